package session

import (
	"context"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/heywrite/answer"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/SaiNageswarS/heywrite/memory"
	"go.uber.org/zap"
)

// Generate drafts a reply for intent using the session tone, language and
// history. The reply is grounded in the indexed corpus when the backend has
// one and comes back with its citations.
func (s *Session) Generate(ctx context.Context, intent string) (answer.Answer, error) {
	return s.generate(ctx, lifecycle.KindGenerate, intent)
}

// GenerateWithTemplate drafts a reply shaped by the standard workplace
// template. It never carries citations.
func (s *Session) GenerateWithTemplate(ctx context.Context, intent string) (answer.Answer, error) {
	return s.generate(ctx, lifecycle.KindGenerateTemplate, intent)
}

func (s *Session) generate(ctx context.Context, kind lifecycle.Kind, intent string) (answer.Answer, error) {
	op := kind.String()

	// Step 1: validate before touching any state
	if strings.TrimSpace(intent) == "" {
		s.reject(op, ErrEmptyIntent)
		return answer.Answer{}, ErrEmptyIntent
	}
	tone, language := s.style()

	// Step 2: enter busy state
	release, err := s.gate.Acquire(kind)
	if err != nil {
		logger.Info("Generation rejected", zap.String("op", op), zap.Error(err))
		s.report(NewProgressUpdate(op, StageRejected, err.Error()))
		return answer.Answer{}, err
	}
	defer release()

	// Step 3: clear the previous answer and its citations
	s.mu.Lock()
	s.binder.Begin()
	s.lastErr = ""
	history := memory.Window(s.conversation.History(), s.config.MaxHistoryTurns)
	s.mu.Unlock()

	s.report(NewProgressUpdate(op, StageStarted, ""))
	startTime := time.Now()

	// Step 4: one round trip
	req := gateway.DraftRequest{
		Intent:   intent,
		Tone:     tone,
		Language: language,
		History:  history,
	}
	resp, err := async.Await(s.draft(ctx, kind, req))
	if err != nil {
		s.fail(op, err)
		return answer.Answer{}, err
	}

	sources := resp.Sources
	if kind == lifecycle.KindGenerateTemplate {
		sources = nil
	}

	// Step 5: answer, sources and history change together
	s.mu.Lock()
	s.binder.Bind(resp.Reply, sources)
	s.conversation.Append(intent, resp.Reply)
	result := s.binder.Snapshot()
	turns := s.conversation.Len()
	s.mu.Unlock()

	logger.Info("Generated reply",
		zap.String("session", s.id),
		zap.String("op", op),
		zap.Int("sources", len(sources)),
		zap.Int("history", turns),
		zap.Duration("took", time.Since(startTime)))
	s.report(NewProgressUpdate(op, StageCompleted, ""))

	// Step 6: the deferred release returns the gate to idle
	return result, nil
}

func (s *Session) draft(ctx context.Context, kind lifecycle.Kind, req gateway.DraftRequest) <-chan async.Result[*gateway.DraftResponse] {
	return async.Go(func() (*gateway.DraftResponse, error) {
		if kind == lifecycle.KindGenerateTemplate {
			return s.config.Drafter.GenerateWithTemplate(ctx, req)
		}
		return s.config.Drafter.Generate(ctx, req)
	})
}

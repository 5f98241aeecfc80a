// Package session is the injectable state container that ties the
// conversation, the displayed answer, the document corpus and the request
// lifecycle together. Presentation layers drive it and read Snapshot.
package session

import (
	"fmt"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/heywrite/answer"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"github.com/SaiNageswarS/heywrite/memory"
	"go.uber.org/zap"
)

// ErrEmptyIntent is returned for blank intents; no request is made.
var ErrEmptyIntent = fmt.Errorf("%w: intent is empty", gateway.ErrValidation)

// Config holds configuration for the session
type Config struct {
	Drafter  gateway.Drafter
	Ingestor gateway.Ingestor
	Reporter Reporter

	Tone     gateway.Tone
	Language gateway.Language

	MaxDocuments int
	Overflow     corpus.OverflowPolicy

	// MaxHistoryTurns limits how many prior user turns are sent with a
	// generation request. Zero sends the whole history.
	MaxHistoryTurns int
}

// Session is safe for concurrent use. Backend-calling operations are
// serialized by the lifecycle gate; everything else takes effect at once.
type Session struct {
	id     string
	config Config
	gate   *lifecycle.Controller
	corpus *corpus.Manager

	// mu guards the fields below. It is never held while calling into gate.
	mu           sync.Mutex
	conversation memory.Conversation
	binder       answer.Binder
	tone         gateway.Tone
	language     gateway.Language
	summary      string
	lastErr      string
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() lifecycle.State {
	return s.gate.State()
}

func (s *Session) Busy() bool {
	return s.gate.Busy()
}

// Allows reports whether an operation of kind could start now.
func (s *Session) Allows(kind lifecycle.Kind) bool {
	return s.gate.Allows(kind)
}

func (s *Session) SetTone(tone string) error {
	t, err := gateway.ParseTone(tone)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tone = t
	s.mu.Unlock()
	return nil
}

func (s *Session) SetLanguage(language string) error {
	l, err := gateway.ParseLanguage(language)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.language = l
	s.mu.Unlock()
	return nil
}

func (s *Session) style() (gateway.Tone, gateway.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tone, s.language
}

func (s *Session) History() []gateway.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.History()
}

func (s *Session) Answer() answer.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binder.Snapshot()
}

func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Undo shows the text displayed before the latest generation again and
// writes it back into the latest assistant turn. Only one level is kept, so
// repeated calls restore the same text. It reports false when there is
// nothing to restore.
func (s *Session) Undo() (string, bool, error) {
	var (
		text string
		ok   bool
	)
	err := s.gate.WhenIdle(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		text, ok = s.binder.Undo()
		if ok {
			s.conversation.UndoLastAssistant(text)
		}
	})
	if err != nil {
		logger.Info("Undo rejected", zap.String("state", s.gate.State().String()))
		s.report(NewProgressUpdate("undo", StageRejected, err.Error()))
		return "", false, err
	}
	return text, ok, nil
}

// Reset clears the conversation together with the bound answer, its
// citations, the undo slot and the summary. The corpus is kept.
func (s *Session) Reset() error {
	err := s.gate.WhenIdle(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.conversation.Reset()
		s.binder.Clear()
		s.summary = ""
		s.lastErr = ""
	})
	if err != nil {
		logger.Info("Reset rejected", zap.String("state", s.gate.State().String()))
		s.report(NewProgressUpdate("reset", StageRejected, err.Error()))
		return err
	}
	logger.Debug("Session reset", zap.String("session", s.id))
	return nil
}

func (s *Session) fail(op string, err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()

	logger.Error("Operation failed",
		zap.String("session", s.id),
		zap.String("op", op),
		zap.Int("status", gateway.StatusCode(err)),
		zap.Error(err))
	s.report(NewFailure(op, err))
}

func (s *Session) reject(op string, err error) {
	logger.Debug("Operation rejected", zap.String("op", op), zap.Error(err))
	s.report(NewProgressUpdate(op, StageRejected, err.Error()))
}

func (s *Session) report(event *Event) {
	if err := s.config.Reporter.Send(event); err != nil {
		logger.Error("Failed to report session event", zap.Error(err))
	}
}

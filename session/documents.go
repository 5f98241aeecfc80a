package session

import (
	"context"
	"errors"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
	"go.uber.org/zap"
)

// Select adds PDFs to the pending set. It never calls the backend and is
// allowed while another operation is in flight.
func (s *Session) Select(files []gateway.File) (corpus.SelectResult, error) {
	res, err := s.corpus.Select(files)
	if err != nil {
		s.reject("select", err)
		return res, err
	}
	return res, nil
}

// Upload indexes every pending document in one backend call.
func (s *Session) Upload(ctx context.Context) (*corpus.UploadResult, error) {
	op := lifecycle.KindUpload.String()
	if s.corpus.PendingCount() == 0 {
		s.reject(op, corpus.ErrNoDocuments)
		return nil, corpus.ErrNoDocuments
	}

	var res *corpus.UploadResult
	err := s.gate.Run(lifecycle.KindUpload, func() error {
		s.report(NewProgressUpdate(op, StageStarted, ""))
		var err error
		res, err = s.corpus.Upload(ctx)
		return err
	})
	if err != nil {
		s.settle(op, err)
		return nil, err
	}

	s.report(NewProgressUpdate(op, StageCompleted, res.Summary()))
	return res, nil
}

// Remove drops a document. Pending documents go locally; indexed ones are
// deleted on the backend under the lifecycle gate and stay on failure.
func (s *Session) Remove(ctx context.Context, id string) (corpus.Document, error) {
	doc, err := s.corpus.Discard(id)
	if !errors.Is(err, corpus.ErrPersisted) {
		if err != nil {
			s.reject("remove", err)
		}
		return doc, err
	}

	op := lifecycle.KindDelete.String()
	err = s.gate.Run(lifecycle.KindDelete, func() error {
		var err error
		doc, err = s.corpus.Remove(ctx, id)
		return err
	})
	if err != nil {
		s.settle(op, err)
		return doc, err
	}

	logger.Info("Document removed", zap.String("session", s.id), zap.String("file", doc.Name))
	return doc, nil
}

// RemoveAll clears the corpus with a single deletion call.
func (s *Session) RemoveAll(ctx context.Context) ([]corpus.Document, error) {
	op := lifecycle.KindDelete.String()
	var removed []corpus.Document
	err := s.gate.Run(lifecycle.KindDelete, func() error {
		var err error
		removed, err = s.corpus.RemoveAll(ctx)
		return err
	})
	if err != nil {
		s.settle(op, err)
		return nil, err
	}
	return removed, nil
}

// Summarize requests a summary over the whole indexed corpus. The result is
// kept apart from the conversation and the displayed answer.
func (s *Session) Summarize(ctx context.Context) (string, error) {
	op := lifecycle.KindSummarize.String()
	if s.corpus.IndexedCount() == 0 {
		s.reject(op, corpus.ErrEmptyCorpus)
		return "", corpus.ErrEmptyCorpus
	}
	tone, language := s.style()

	var reply string
	err := s.gate.Run(lifecycle.KindSummarize, func() error {
		s.report(NewProgressUpdate(op, StageStarted, ""))
		var err error
		reply, err = s.corpus.Summarize(ctx, tone, language)
		return err
	})
	if err != nil {
		s.settle(op, err)
		return "", err
	}

	s.mu.Lock()
	s.summary = reply
	s.lastErr = ""
	s.mu.Unlock()

	s.report(NewProgressUpdate(op, StageCompleted, ""))
	return reply, nil
}

func (s *Session) Documents() []corpus.Document {
	return s.corpus.Documents()
}

func (s *Session) Document(id string) (corpus.Document, bool) {
	return s.corpus.Lookup(id)
}

func (s *Session) DocumentByName(name string) (corpus.Document, bool) {
	return s.corpus.LookupName(name)
}

// settle separates local rejections from backend failures.
func (s *Session) settle(op string, err error) {
	if errors.Is(err, gateway.ErrValidation) || errors.Is(err, lifecycle.ErrStateConflict) {
		s.reject(op, err)
		return
	}
	s.fail(op, err)
}

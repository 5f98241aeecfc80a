package session

import (
	"github.com/SaiNageswarS/heywrite/answer"
	"github.com/SaiNageswarS/heywrite/corpus"
	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/SaiNageswarS/heywrite/lifecycle"
)

// Snapshot is a consistent read-only copy of the session for presentation.
type Snapshot struct {
	ID        string
	State     lifecycle.State
	Tone      gateway.Tone
	Language  gateway.Language
	History   []gateway.Message
	Answer    answer.Answer
	Documents []corpus.Document
	Summary   string
	LastError string
}

// Snapshot reads the gate first; the session lock is never held while
// calling into the controller.
func (s *Session) Snapshot() Snapshot {
	state := s.gate.State()
	docs := s.corpus.Documents()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.id,
		State:     state,
		Tone:      s.tone,
		Language:  s.language,
		History:   s.conversation.History(),
		Answer:    s.binder.Snapshot(),
		Documents: docs,
		Summary:   s.summary,
		LastError: s.lastErr,
	}
}

package memory

import (
	"strings"

	"github.com/SaiNageswarS/heywrite/gateway"
)

// Conversation is the ordered history of one session. Turns are append-only
// except for the content of the most recent assistant turn, which
// UndoLastAssistant may overwrite. Conversation is not safe for concurrent
// use; the owning session serialises access.
type Conversation struct {
	Messages []gateway.Message
}

func (m *Conversation) AddUserMessage(content string) {
	m.Messages = append(m.Messages, gateway.Message{Role: gateway.RoleUser, Content: content})
}

func (m *Conversation) AddAssistantMessage(content string) {
	m.Messages = append(m.Messages, gateway.Message{Role: gateway.RoleAssistant, Content: content})
}

// Append pushes a user turn followed by an assistant turn and returns the new
// length. A blank user turn is a no-op.
func (m *Conversation) Append(userContent, assistantContent string) int {
	if strings.TrimSpace(userContent) == "" {
		return len(m.Messages)
	}
	m.AddUserMessage(userContent)
	m.AddAssistantMessage(assistantContent)
	return len(m.Messages)
}

// UndoLastAssistant replaces the content of the most recent assistant turn.
// It reports whether such a turn existed.
func (m *Conversation) UndoLastAssistant(previousContent string) bool {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Role == gateway.RoleAssistant {
			m.Messages[i].Content = previousContent
			return true
		}
	}
	return false
}

func (m *Conversation) Reset() {
	m.Messages = nil
}

func (m *Conversation) Len() int {
	return len(m.Messages)
}

// History returns a copy of the turns, never nil.
func (m *Conversation) History() []gateway.Message {
	out := make([]gateway.Message, len(m.Messages))
	copy(out, m.Messages)
	return out
}

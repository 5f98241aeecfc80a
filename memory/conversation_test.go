package memory

import (
	"testing"

	"github.com/SaiNageswarS/heywrite/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_AddMessages(t *testing.T) {
	t.Run("AddUserMessage", func(t *testing.T) {
		conversation := &Conversation{}
		conversation.AddUserMessage("Hello")

		assert.Len(t, conversation.Messages, 1)
		assert.Equal(t, "user", conversation.Messages[0].Role)
		assert.Equal(t, "Hello", conversation.Messages[0].Content)
	})

	t.Run("AddAssistantMessage", func(t *testing.T) {
		conversation := &Conversation{}
		conversation.AddAssistantMessage("Hi there!")

		assert.Len(t, conversation.Messages, 1)
		assert.Equal(t, "assistant", conversation.Messages[0].Role)
		assert.Equal(t, "Hi there!", conversation.Messages[0].Content)
	})
}

func TestConversation_Append(t *testing.T) {
	t.Run("pushes user then assistant", func(t *testing.T) {
		conversation := &Conversation{}
		n := conversation.Append("Write an invitation email", "Dear team, ...")

		assert.Equal(t, 2, n)
		assert.Equal(t, []gateway.Message{
			{Role: "user", Content: "Write an invitation email"},
			{Role: "assistant", Content: "Dear team, ..."},
		}, conversation.Messages)
	})

	t.Run("blank user content is a no-op", func(t *testing.T) {
		conversation := &Conversation{}
		conversation.Append("first", "reply")

		for _, blank := range []string{"", "   ", "\n\t"} {
			n := conversation.Append(blank, "ignored")
			assert.Equal(t, 2, n)
		}
		assert.Len(t, conversation.Messages, 2)
	})
}

func TestConversation_UndoLastAssistant(t *testing.T) {
	t.Run("replaces only the latest assistant turn", func(t *testing.T) {
		conversation := &Conversation{}
		conversation.Append("q1", "a1")
		conversation.Append("q2", "a2")

		ok := conversation.UndoLastAssistant("a1")

		require.True(t, ok)
		assert.Equal(t, "a1", conversation.Messages[1].Content)
		assert.Equal(t, "a1", conversation.Messages[3].Content)
		assert.Equal(t, "q2", conversation.Messages[2].Content)
		assert.Len(t, conversation.Messages, 4)
	})

	t.Run("is idempotent", func(t *testing.T) {
		conversation := &Conversation{}
		conversation.Append("q1", "a1")
		conversation.Append("q2", "a2")

		conversation.UndoLastAssistant("a1")
		once := conversation.History()
		conversation.UndoLastAssistant("a1")

		assert.Equal(t, once, conversation.History())
	})

	t.Run("no assistant turn is a no-op", func(t *testing.T) {
		conversation := &Conversation{}
		assert.False(t, conversation.UndoLastAssistant("anything"))
		assert.Empty(t, conversation.Messages)

		conversation.AddUserMessage("dangling question")
		assert.False(t, conversation.UndoLastAssistant("anything"))
		assert.Equal(t, "dangling question", conversation.Messages[0].Content)
	})
}

func TestConversation_ResetAndHistory(t *testing.T) {
	conversation := &Conversation{}
	conversation.Append("q1", "a1")

	history := conversation.History()
	history[0].Content = "mutated"
	assert.Equal(t, "q1", conversation.Messages[0].Content, "History must return a copy")

	conversation.Reset()
	assert.Equal(t, 0, conversation.Len())
	assert.NotNil(t, conversation.History())
	assert.Empty(t, conversation.History())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name         string
		maxUserTurns int
		input        []gateway.Message
		expected     []gateway.Message
	}{
		{
			name:         "empty messages",
			maxUserTurns: 5,
			input:        []gateway.Message{},
			expected:     []gateway.Message{},
		},
		{
			name:         "zero keeps everything",
			maxUserTurns: 0,
			input: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
			},
			expected: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
			},
		},
		{
			name:         "fewer turns than max",
			maxUserTurns: 5,
			input: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
			},
			expected: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
			},
		},
		{
			name:         "exactly max turns",
			maxUserTurns: 2,
			input: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
				{Role: "user", Content: "How are you?"},
				{Role: "assistant", Content: "I'm good!"},
			},
			expected: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
				{Role: "user", Content: "How are you?"},
				{Role: "assistant", Content: "I'm good!"},
			},
		},
		{
			name:         "more turns than max",
			maxUserTurns: 2,
			input: []gateway.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi!"},
				{Role: "user", Content: "How are you?"},
				{Role: "assistant", Content: "I'm good!"},
				{Role: "user", Content: "What's the weather?"},
				{Role: "assistant", Content: "It's sunny!"},
			},
			expected: []gateway.Message{
				{Role: "user", Content: "How are you?"},
				{Role: "assistant", Content: "I'm good!"},
				{Role: "user", Content: "What's the weather?"},
				{Role: "assistant", Content: "It's sunny!"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Window(tt.input, tt.maxUserTurns)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWindowReturnsCopy(t *testing.T) {
	msgs := []gateway.Message{{Role: "user", Content: "Hello"}}
	out := Window(msgs, 0)
	out[0].Content = "changed"
	assert.Equal(t, "Hello", msgs[0].Content)
}

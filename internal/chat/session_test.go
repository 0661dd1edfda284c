package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/config"
)

func newTestSession(maxHistory int) *Session {
	return NewSession(&config.ModelConfig{
		Name:         "test-model",
		MaxTokens:    1024,
		Temperature:  0.7,
		SystemPrompt: "You are Rin.",
	}, maxHistory)
}

func TestBuildAPIRequest(t *testing.T) {
	s := newTestSession(10)
	s.AddUserMessage("hello")
	s.AddAssistantMessage("hi there")
	s.SetToolsPrompt("You can set timers.")

	req := s.BuildAPIRequest()
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, 1024, req.MaxTokens)
	assert.Equal(t, "You are Rin.\n\nYou can set timers.", req.System)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "hello", req.Messages[0].Content)
}

func TestHistoryTruncates(t *testing.T) {
	s := newTestSession(3)
	s.AddUserMessage("one")
	s.AddAssistantMessage("two")
	s.AddUserMessage("three")
	s.AddAssistantMessage("four")

	msgs := s.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "two", msgs[0].Content)
}

func TestTruncationDropsOrphanedToolMessages(t *testing.T) {
	s := newTestSession(3)
	s.AddUserMessage("add milk to shopping")
	s.AddAssistantMessageWithToolCalls("", []api.ToolCall{{ID: "call_1", Name: "list_add", Arguments: `{"list":"shopping","item":"milk"}`}})
	s.AddToolResult("call_1", "Added.")
	s.AddAssistantMessage("Milk is on the list.")

	// Truncation dropped the user message; the assistant+tool_calls pair
	// and its result must not survive as a dangling head either... but a
	// well-formed pair at the head is fine.
	msgs := s.GetMessages()
	for i, msg := range msgs {
		if msg.Role == "tool" {
			require.Greater(t, i, 0)
			assert.NotEmpty(t, msgs[i-1].ToolCalls)
		}
	}

	s.AddUserMessage("thanks")
	s.AddAssistantMessage("anytime")
	msgs = s.GetMessages()
	assert.NotEqual(t, "tool", msgs[0].Role)
}

func TestSetTemperature(t *testing.T) {
	s := newTestSession(10)

	require.NoError(t, s.SetTemperature(1.2))
	assert.Equal(t, 1.2, s.GetTemperature())

	assert.Error(t, s.SetTemperature(2.5))
	assert.Error(t, s.SetTemperature(-0.1))
}

func TestClear(t *testing.T) {
	s := newTestSession(10)
	s.AddUserMessage("hello")
	require.False(t, s.IsEmpty())

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.MessageCount())
}

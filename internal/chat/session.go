// Package chat holds the in-flight conversation the REPL sends to the
// provider: a bounded message history plus the prompts and model
// settings every request carries.
package chat

import (
	"fmt"
	"strings"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/config"
)

type Session struct {
	history      *History
	systemPrompt string
	toolsPrompt  string // guidance for the tools currently connected
	config       *config.ModelConfig
}

func NewSession(cfg *config.ModelConfig, maxHistory int) *Session {
	return &Session{
		history:      NewHistory(maxHistory),
		systemPrompt: cfg.SystemPrompt,
		config:       cfg,
	}
}

func (s *Session) AddUserMessage(content string) {
	s.history.Add(api.Message{
		Role:    "user",
		Content: content,
	})
}

func (s *Session) AddAssistantMessage(content string) {
	s.history.Add(api.Message{
		Role:    "assistant",
		Content: content,
	})
}

// AddAssistantMessageWithToolCalls records an assistant turn that requests
// tool calls. Must precede the matching AddToolResult calls so the
// provider sees a well-formed conversation.
func (s *Session) AddAssistantMessageWithToolCalls(content string, toolCalls []api.ToolCall) {
	s.history.Add(api.Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResult records a tool execution result.
func (s *Session) AddToolResult(toolCallID, result string) {
	s.history.Add(api.Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: toolCallID,
	})
}

func (s *Session) GetMessages() []api.Message {
	return s.history.GetAll()
}

// SetToolsPrompt sets additional guidance for available tools.
func (s *Session) SetToolsPrompt(prompt string) {
	s.toolsPrompt = prompt
}

func (s *Session) SetTemperature(temp float64) error {
	if temp < 0 || temp > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	s.config.Temperature = temp
	return nil
}

func (s *Session) GetTemperature() float64 {
	return s.config.Temperature
}

func (s *Session) Clear() {
	s.history.Clear()
}

func (s *Session) IsEmpty() bool {
	return s.history.IsEmpty()
}

func (s *Session) MessageCount() int {
	return s.history.Size()
}

// GetModelName returns the current model name.
func (s *Session) GetModelName() string {
	return s.config.Name
}

func (s *Session) BuildAPIRequest() api.MessageRequest {
	parts := []string{s.systemPrompt}
	if s.toolsPrompt != "" {
		parts = append(parts, s.toolsPrompt)
	}

	return api.MessageRequest{
		Messages:    s.history.GetAll(),
		System:      strings.Join(parts, "\n\n"),
		Model:       s.config.Name,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}
}

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders assistant replies as terminal markdown.
// Falls back to plain text when the renderer cannot be built (dumb
// terminals, no TTY).
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
}

func NewMarkdownRenderer(colored bool) *MarkdownRenderer {
	if !colored {
		return &MarkdownRenderer{}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &MarkdownRenderer{}
	}
	return &MarkdownRenderer{renderer: r}
}

// Render returns the styled text, or the input unchanged when styling is
// unavailable or rendering fails.
func (m *MarkdownRenderer) Render(text string) string {
	if m.renderer == nil {
		return text
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

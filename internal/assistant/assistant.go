// Package assistant is the conversational core shared by the REPL, the
// one-shot CLI commands and the Telegram bot: it carries recent
// interaction history into each provider call and persists every
// exchange.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/history"
	"github.com/notexe/rin/internal/search"
)

const systemPrompt = `You are Rin, a personal assistant. Be concise and direct.
Answer questions, help with day-to-day tasks, and when earlier exchanges are
provided use them to resolve follow-up references.`

// Searcher is the web search dependency, satisfied by *search.Client.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Assistant answers queries through a chat provider, threading in recent
// history and recording each exchange.
type Assistant struct {
	provider     api.Provider
	searcher     Searcher
	history      *history.Store
	model        string
	contextTurns int
	log          zerolog.Logger
}

// New builds the assistant. searcher may be nil when web search is not
// configured; contextTurns caps how many past exchanges are replayed.
func New(provider api.Provider, searcher Searcher, hist *history.Store, model string, contextTurns int, log zerolog.Logger) *Assistant {
	if contextTurns < 0 {
		contextTurns = 0
	}
	return &Assistant{
		provider:     provider,
		searcher:     searcher,
		history:      hist,
		model:        model,
		contextTurns: contextTurns,
		log:          log.With().Str("component", "assistant").Logger(),
	}
}

// Ask answers a single query with recent exchanges as context, then
// persists the new exchange. A history write failure is logged, not
// surfaced: the user already has the answer.
func (a *Assistant) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("query must not be empty")
	}

	messages := a.contextMessages()
	messages = append(messages, api.Message{Role: "user", Content: query})

	resp, err := a.provider.SendMessage(ctx, api.MessageRequest{
		Messages: messages,
		System:   systemPrompt,
		Model:    a.model,
	})
	if err != nil {
		return "", fmt.Errorf("failed to ask provider: %w", err)
	}

	if err := a.history.Save(query, resp.Content); err != nil {
		a.log.Warn().Err(err).Msg("failed to record interaction")
	}
	return resp.Content, nil
}

// Search runs a web search and has the provider summarize the hits. The
// exchange is recorded like a plain Ask.
func (a *Assistant) Search(ctx context.Context, query string) (string, error) {
	if a.searcher == nil {
		return "", fmt.Errorf("web search is not configured (set search.serpApiKey)")
	}

	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No results found.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize these web search results for the query %q. Answer the query directly, citing the sources by title.\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.Link, r.Snippet)
	}

	resp, err := a.provider.SendMessage(ctx, api.MessageRequest{
		Messages: []api.Message{{Role: "user", Content: sb.String()}},
		System:   systemPrompt,
		Model:    a.model,
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize search results: %w", err)
	}

	if err := a.history.Save("search: "+query, resp.Content); err != nil {
		a.log.Warn().Err(err).Msg("failed to record interaction")
	}
	return resp.Content, nil
}

// contextMessages replays the most recent exchanges oldest-first so the
// provider sees a coherent conversation.
func (a *Assistant) contextMessages() []api.Message {
	if a.contextTurns == 0 {
		return nil
	}

	recent, err := a.history.Recent(a.contextTurns)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to load interaction history")
		return nil
	}

	messages := make([]api.Message, 0, len(recent)*2)
	for i := len(recent) - 1; i >= 0; i-- {
		messages = append(messages,
			api.Message{Role: "user", Content: recent[i].Query},
			api.Message{Role: "assistant", Content: recent[i].Response},
		)
	}
	return messages
}

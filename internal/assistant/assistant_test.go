package assistant

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/history"
	"github.com/notexe/rin/internal/search"
	"github.com/notexe/rin/internal/storage"
)

type fakeProvider struct {
	reply   string
	lastReq api.MessageRequest
}

func (f *fakeProvider) SendMessage(_ context.Context, req api.MessageRequest) (*api.MessageResponse, error) {
	f.lastReq = req
	return &api.MessageResponse{Content: f.reply}, nil
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

type fakeSearcher struct {
	results []search.Result
}

func (f *fakeSearcher) Search(context.Context, string) ([]search.Result, error) {
	return f.results, nil
}

func newTestAssistant(t *testing.T, provider *fakeProvider, searcher Searcher) (*Assistant, *history.Store) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hist, err := history.NewStore(db)
	require.NoError(t, err)

	return New(provider, searcher, hist, "test-model", 3, zerolog.Nop()), hist
}

func TestAskRecordsAndThreadsHistory(t *testing.T) {
	provider := &fakeProvider{reply: "half past three"}
	asst, hist := newTestAssistant(t, provider, nil)

	answer, err := asst.Ask(context.Background(), "what time is it")
	require.NoError(t, err)
	assert.Equal(t, "half past three", answer)

	recent, err := hist.Recent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "what time is it", recent[0].Query)

	// Second ask replays the first exchange before the new query.
	provider.reply = "then set a timer"
	_, err = asst.Ask(context.Background(), "and in an hour?")
	require.NoError(t, err)

	msgs := provider.lastReq.Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "what time is it", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "half past three", msgs[1].Content)
	assert.Equal(t, "and in an hour?", msgs[2].Content)
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	asst, _ := newTestAssistant(t, &fakeProvider{}, nil)

	_, err := asst.Ask(context.Background(), "   ")
	assert.Error(t, err)
}

func TestSearchSummarizes(t *testing.T) {
	provider := &fakeProvider{reply: "Use modernc.org/sqlite for a cgo-free build."}
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "modernc.org/sqlite", Link: "https://pkg.go.dev/modernc.org/sqlite", Snippet: "cgo-free port"},
	}}
	asst, hist := newTestAssistant(t, provider, searcher)

	answer, err := asst.Search(context.Background(), "go sqlite driver")
	require.NoError(t, err)
	assert.Equal(t, "Use modernc.org/sqlite for a cgo-free build.", answer)

	// The summarization prompt carries the hits.
	require.Len(t, provider.lastReq.Messages, 1)
	assert.Contains(t, provider.lastReq.Messages[0].Content, "modernc.org/sqlite")
	assert.Contains(t, provider.lastReq.Messages[0].Content, "go sqlite driver")

	recent, err := hist.Recent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "search: go sqlite driver", recent[0].Query)
}

func TestSearchWithoutSearcher(t *testing.T) {
	asst, _ := newTestAssistant(t, &fakeProvider{}, nil)

	_, err := asst.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSearchNoResults(t *testing.T) {
	asst, _ := newTestAssistant(t, &fakeProvider{}, &fakeSearcher{})

	answer, err := asst.Search(context.Background(), "obscure")
	require.NoError(t, err)
	assert.Equal(t, "No results found.", answer)
}

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go sqlite driver", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("num"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic_results": [
				{"title": "modernc.org/sqlite", "link": "https://pkg.go.dev/modernc.org/sqlite", "snippet": "cgo-free port"},
				{"title": "mattn/go-sqlite3", "link": "https://github.com/mattn/go-sqlite3", "snippet": "sqlite3 driver"},
				{"title": "extra beyond limit", "link": "https://example.com", "snippet": "dropped"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", 2, zerolog.Nop(), WithBaseURL(srv.URL))

	results, err := client.Search(context.Background(), "go sqlite driver")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "modernc.org/sqlite", results[0].Title)
	assert.Equal(t, "https://github.com/mattn/go-sqlite3", results[1].Link)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error": "Invalid API key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", 5, zerolog.Nop(), WithBaseURL(srv.URL))

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestSearchRequiresKey(t *testing.T) {
	client := NewClient("", 5, zerolog.Nop())

	_, err := client.Search(context.Background(), "anything")
	assert.Error(t, err)
}

// Package search queries the web through SerpAPI's Google endpoint.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client talks to SerpAPI.
type Client struct {
	apiKey  string
	baseURL string
	results int
	client  *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// NewClient builds a SerpAPI client returning up to results hits per query.
func NewClient(apiKey string, results int, log zerolog.Logger, opts ...Option) *Client {
	if results <= 0 {
		results = 5
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		results: results,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("component", "search").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type serpResponse struct {
	OrganicResults []Result `json:"organic_results"`
	Error          string   `json:"error"`
}

// Search runs the query and returns the organic results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("SerpAPI key is required for web search")
	}
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(c.results))
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, body)
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("search API error: %s", parsed.Error)
	}

	results := parsed.OrganicResults
	if len(results) > c.results {
		results = results[:c.results]
	}

	c.log.Debug().Str("query", query).Int("results", len(results)).Dur("took", time.Since(start)).Msg("searched")
	return results, nil
}

// Package search wraps the external web-search collaborator used by the
// research agent. An unconfigured provider is a distinct condition from a
// query that returns zero results.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Tavily search API endpoint.
	DefaultBaseURL = "https://api.tavily.com"

	// SearchTimeout bounds a single search request.
	SearchTimeout = 30 * time.Second

	// MaxResultsPerQuery bounds how many sources one query returns.
	MaxResultsPerQuery = 5

	// RecencyWindowDays restricts results to roughly the last three years.
	RecencyWindowDays = 1095

	// recencySuffix is appended to every query to bias toward recent sources.
	recencySuffix = " 2023 OR 2024 OR 2025"
)

// ErrNotConfigured is returned when no API key is set. Callers surface this
// per-query so the user learns why no evidence came back.
var ErrNotConfigured = errors.New("search provider not configured")

// Result is a single search hit.
type Result struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content,omitempty"`
}

// QueryResult holds everything one query produced, including the provider's
// synthesized answer when available.
type QueryResult struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
	Err     string   `json:"error,omitempty"`
}

// Client is a Tavily search client. The zero API key means unconfigured.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates a search client. An empty apiKey yields a client whose
// Search always returns ErrNotConfigured.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: SearchTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
	Days              int    `json:"days"`
}

type tavilyResponse struct {
	Answer  string   `json:"answer"`
	Results []Result `json:"results"`
}

// Search runs one query with advanced depth and a recency window. Returns
// ErrNotConfigured when no API key is set.
func (c *Client) Search(ctx context.Context, query string) (*QueryResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload := tavilyRequest{
		APIKey:            c.apiKey,
		Query:             query + recencySuffix,
		SearchDepth:       "advanced",
		IncludeAnswer:     true,
		IncludeRawContent: true,
		MaxResults:        MaxResultsPerQuery,
		Days:              RecencyWindowDays,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResponse tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &QueryResult{
		Query:   query,
		Answer:  apiResponse.Answer,
		Results: apiResponse.Results,
	}, nil
}

// Package rag retrieves grounding context from a vector knowledge base. The
// query is embedded, matched against stored chunks over an RPC endpoint, and
// formatted for prompt injection.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"problem-navigator/llm"
)

const (
	// DefaultTopK is how many chunks a retrieval returns by default.
	DefaultTopK = 5

	// DefaultThreshold is the minimum similarity for a chunk to match.
	DefaultThreshold = 0.5

	// retrievalTimeout bounds the embed plus RPC round-trip.
	retrievalTimeout = 30 * time.Second

	// NoContextMessage is returned by FormatContext when nothing matched.
	NoContextMessage = "No relevant context found in knowledge base."
)

// Chunk is one matched knowledge-base entry.
type Chunk struct {
	Content    string  `json:"content"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// KnowledgeBase performs similarity search against a Supabase-hosted vector
// store. A zero baseURL or apiKey means retrieval is disabled.
type KnowledgeBase struct {
	baseURL    string
	apiKey     string
	embedder   llm.Embedder
	httpClient *http.Client
}

// NewKnowledgeBase creates a knowledge base client. Empty credentials yield a
// client whose RetrieveContext returns no chunks without error.
func NewKnowledgeBase(baseURL, apiKey string, embedder llm.Embedder) *KnowledgeBase {
	return &KnowledgeBase{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		embedder: embedder,
		httpClient: &http.Client{
			Timeout: retrievalTimeout,
		},
	}
}

// Configured reports whether the knowledge base has credentials.
func (kb *KnowledgeBase) Configured() bool {
	return kb.baseURL != "" && kb.apiKey != ""
}

type searchRPCRequest struct {
	QueryEmbedding []float64 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

type searchRPCRow struct {
	Content    string  `json:"content"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// RetrieveContext embeds the query and returns the topK most similar chunks
// above the threshold. An unconfigured knowledge base returns no chunks.
func (kb *KnowledgeBase) RetrieveContext(ctx context.Context, query string, topK int, threshold float64) ([]Chunk, error) {
	if !kb.Configured() {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	embedding, err := kb.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	payload := searchRPCRequest{
		QueryEmbedding: embedding,
		MatchThreshold: threshold,
		MatchCount:     topK,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := kb.baseURL + "/rest/v1/rpc/search_knowledge_base"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", kb.apiKey)
	req.Header.Set("Authorization", "Bearer "+kb.apiKey)

	resp, err := kb.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var rows []searchRPCRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	chunks := make([]Chunk, 0, len(rows))
	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = "Untitled"
		}
		source := row.Source
		if source == "" {
			source = "Unknown"
		}
		chunks = append(chunks, Chunk{
			Content:    row.Content,
			Title:      title,
			Source:     source,
			Similarity: row.Similarity,
		})
	}
	return chunks, nil
}

// FormatContext renders chunks as a numbered block for prompt injection.
func FormatContext(chunks []Chunk) string {
	if len(chunks) == 0 {
		return NoContextMessage
	}

	sections := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		sections = append(sections, fmt.Sprintf("[%d] %s\n%s", i+1, chunk.Title, chunk.Content))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

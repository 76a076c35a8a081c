package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Gemini REST API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultEmbeddingModel is used for embedding calls.
	DefaultEmbeddingModel = "text-embedding-004"

	// DefaultTimeout bounds a single generation request.
	DefaultTimeout = 120 * time.Second

	citationExcerptLimit = 300
)

// GeminiClient talks to the Gemini REST API directly. It implements Client
// and Embedder.
type GeminiClient struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	httpClient     *http.Client
}

// GeminiOption customizes a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL overrides the API endpoint. Used by tests to point at a mock
// server.
func WithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithEmbeddingModel overrides the embedding model name.
func WithEmbeddingModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		c.embeddingModel = model
	}
}

// NewGeminiClient creates a client for the given API key.
func NewGeminiClient(apiKey string, opts ...GeminiOption) *GeminiClient {
	c := &GeminiClient{
		apiKey:         apiKey,
		baseURL:        DefaultBaseURL,
		embeddingModel: DefaultEmbeddingModel,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types for the generateContent API.

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiRetrievedContext struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type geminiGroundingChunk struct {
	RetrievedContext *geminiRetrievedContext `json:"retrievedContext,omitempty"`
}

type geminiGroundingMetadata struct {
	GroundingChunks []geminiGroundingChunk `json:"groundingChunks,omitempty"`
}

type geminiCandidate struct {
	Content           geminiContent            `json:"content"`
	GroundingMetadata *geminiGroundingMetadata `json:"groundingMetadata,omitempty"`
}

type geminiAPIResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// Generate runs a single prompt against the named model and returns the
// response text plus any grounded citations.
func (c *GeminiClient) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResponse geminiAPIResponse
	if err := json.Unmarshal(bodyBytes, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(apiResponse.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := apiResponse.Candidates[0]
	return &Response{
		Content:   joinParts(candidate.Content.Parts),
		Citations: extractCitations(candidate.GroundingMetadata),
	}, nil
}

// GenerateStream runs a prompt against the streaming endpoint and invokes fn
// for each text chunk.
func (c *GeminiClient) GenerateStream(ctx context.Context, model string, prompt string, fn func(chunk string) error) error {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiAPIResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keep-alive frames
			continue
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		text := joinParts(chunk.Candidates[0].Content.Parts)
		if text == "" {
			continue
		}
		if err := fn(text); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}

// Wire types for the embedContent API.

type geminiEmbedRequest struct {
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Embed generates an embedding vector for the given text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float64, error) {
	payload := geminiEmbedRequest{
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.embeddingModel)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embedResponse geminiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(embedResponse.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding values in response")
	}
	return embedResponse.Embedding.Values, nil
}

func joinParts(parts []geminiPart) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// extractCitations pulls retrieved-context chunks out of grounding metadata,
// deduplicated by title, with excerpts truncated for prompt reuse.
func extractCitations(metadata *geminiGroundingMetadata) []Citation {
	if metadata == nil {
		return nil
	}

	var citations []Citation
	seenTitles := make(map[string]bool)
	for _, chunk := range metadata.GroundingChunks {
		rc := chunk.RetrievedContext
		if rc == nil {
			continue
		}
		title := rc.Title
		if title == "" {
			title = "Document"
		}
		if seenTitles[title] {
			continue
		}
		seenTitles[title] = true

		text := rc.Text
		if len(text) > citationExcerptLimit {
			text = text[:citationExcerptLimit] + "..."
		}
		citations = append(citations, Citation{
			Title:  title,
			Text:   text,
			Source: "Knowledge Base",
		})
	}
	return citations
}

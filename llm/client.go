// Package llm abstracts the inference provider behind small interfaces so
// agents can be exercised against fakes in tests and the provider can be
// swapped without touching pipeline code.
package llm

import "context"

// Citation is one grounded source attached to a generation, retrieved from
// the provider's grounding side-channel.
type Citation struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Response is the result of a single generation call.
type Response struct {
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
}

// Client generates text from prompts. Implementations must be safe for
// concurrent use; the pipeline fans out calls from multiple goroutines.
type Client interface {
	// Generate runs a single prompt against the named model.
	Generate(ctx context.Context, model string, prompt string) (*Response, error)

	// GenerateStream runs a prompt and invokes fn for each text chunk as it
	// arrives. Returning an error from fn aborts the stream.
	GenerateStream(ctx context.Context, model string, prompt string, fn func(chunk string) error) error
}

// Embedder produces embedding vectors. Only the knowledge-retrieval
// collaborator uses embeddings; agents never do.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

package agents

import (
	"context"
	"sync"

	"problem-navigator/llm"
)

// fakeClient is a scripted llm.Client. When respond is set it picks the reply
// per call, which keeps concurrent callers deterministic; otherwise responses
// are consumed in order with the final one repeating. A non-nil err fails
// every call.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	respond   func(model, prompt string) string
	citations []llm.Citation
	err       error
	calls     int
	prompts   []string
	models    []string
}

func (f *fakeClient) Generate(ctx context.Context, model, prompt string) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.models = append(f.models, model)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.respond != nil {
		return &llm.Response{Content: f.respond(model, prompt), Citations: f.citations}, nil
	}
	if len(f.responses) == 0 {
		return &llm.Response{Content: "{}", Citations: f.citations}, nil
	}
	content := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return &llm.Response{Content: content, Citations: f.citations}, nil
}

func (f *fakeClient) GenerateStream(ctx context.Context, model, prompt string, fn func(chunk string) error) error {
	resp, err := f.Generate(ctx, model, prompt)
	if err != nil {
		return err
	}
	return fn(resp.Content)
}

func (f *fakeClient) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// stuckClient blocks every call until release is closed, even past context
// cancellation. Keeps cancellation tests deterministic: no result can arrive
// before the caller observes ctx.Done.
type stuckClient struct {
	release chan struct{}
}

func newStuckClient() *stuckClient {
	return &stuckClient{release: make(chan struct{})}
}

func (s *stuckClient) Generate(ctx context.Context, model, prompt string) (*llm.Response, error) {
	<-s.release
	return nil, context.Canceled
}

func (s *stuckClient) GenerateStream(ctx context.Context, model, prompt string, fn func(chunk string) error) error {
	<-s.release
	return context.Canceled
}

func sampleConversation() []Message {
	return []Message{
		{Role: "user", Content: "Our churn rate doubled last quarter and we don't know why"},
		{Role: "assistant", Content: "Let's look at what changed recently on your side."},
		{Role: "user", Content: "We shipped a pricing change and a redesign in the same week"},
		{Role: "assistant", Content: "Both could contribute. Which customer segment is leaving fastest?"},
	}
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"problem-navigator/agents"
	"problem-navigator/llm"
)

// TestHelper provides utilities for tests
type TestHelper struct {
	t       *testing.T
	tempDir string
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTempDir creates a temporary directory for testing
func (h *TestHelper) CreateTempDir() string {
	tempDir, err := os.MkdirTemp("", "navigator-test-*")
	if err != nil {
		h.t.Fatalf("Failed to create temp dir: %v", err)
	}
	h.tempDir = tempDir
	return tempDir
}

// Cleanup removes the temporary directory
func (h *TestHelper) Cleanup() {
	if h.tempDir != "" {
		os.RemoveAll(h.tempDir)
	}
}

// UseTempDataDir points DataDir at a fresh temp directory and restores it
// when the test finishes.
func (h *TestHelper) UseTempDataDir() {
	tempDir := h.CreateTempDir()
	oldDataDir := DataDir
	DataDir = filepath.Join(tempDir, "conversations")
	h.t.Cleanup(func() { DataDir = oldDataDir })
}

// ReadJSONFile reads and unmarshals JSON from a file
func (h *TestHelper) ReadJSONFile(path string, v interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		h.t.Fatalf("Failed to read file: %v", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		h.t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
}

// AssertNoError checks if an error is nil
func (h *TestHelper) AssertNoError(err error, message string) {
	if err != nil {
		h.t.Errorf("%s: unexpected error: %v", message, err)
	}
}

// AssertError checks if an error is not nil
func (h *TestHelper) AssertError(err error, message string) {
	if err == nil {
		h.t.Errorf("%s: expected error, got nil", message)
	}
}

// stubLLM returns a fixed response or error for every call
type stubLLM struct {
	content string
	err     error
}

func (s *stubLLM) Generate(ctx context.Context, model, prompt string) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

func (s *stubLLM) GenerateStream(ctx context.Context, model, prompt string, fn func(chunk string) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(s.content)
}

// SampleStoredConversation creates a sample conversation for testing
func SampleStoredConversation(id string) *Conversation {
	return &Conversation{
		ID:        id,
		CreatedAt: testTime(),
		Title:     "Test Conversation",
		Messages: []agents.Message{
			{Role: "user", Content: "Our onboarding drop-off is 60% and climbing"},
			{Role: "assistant", Content: "Where in the flow do users abandon?"},
		},
	}
}

// testTime returns a fixed time for testing
func testTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

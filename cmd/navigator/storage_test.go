package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"problem-navigator/llm"
)

// TestEnsureDataDir tests directory creation
func TestEnsureDataDir(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	err := EnsureDataDir()
	helper.AssertNoError(err, "EnsureDataDir should succeed")

	if _, err := os.Stat(DataDir); os.IsNotExist(err) {
		t.Errorf("Directory was not created: %s", DataDir)
	}

	err = EnsureDataDir()
	helper.AssertNoError(err, "EnsureDataDir should be idempotent")
}

// TestGetConversationPath tests path generation
func TestGetConversationPath(t *testing.T) {
	oldDataDir := DataDir
	DataDir = "/test/data"
	defer func() { DataDir = oldDataDir }()

	tests := []struct {
		id       string
		expected string
	}{
		{"abc-123", "/test/data/abc-123.json"},
		{"test", "/test/data/test.json"},
		{"", "/test/data/.json"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			path := GetConversationPath(tt.id)
			if path != tt.expected {
				t.Errorf("GetConversationPath(%q) = %q, want %q", tt.id, path, tt.expected)
			}
		})
	}
}

// TestCreateConversation tests creating a new conversation
func TestCreateConversation(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	conv, err := CreateConversation("test-id-123")
	helper.AssertNoError(err, "CreateConversation should succeed")
	if conv == nil {
		t.Fatal("Conversation should not be nil")
	}

	if conv.ID != "test-id-123" {
		t.Errorf("ID = %q, want %q", conv.ID, "test-id-123")
	}
	if conv.Title != "New Conversation" {
		t.Errorf("Title = %q, want %q", conv.Title, "New Conversation")
	}
	if len(conv.Messages) != 0 {
		t.Errorf("Messages = %d, want empty", len(conv.Messages))
	}

	// Verify the file exists on disk
	var stored Conversation
	helper.ReadJSONFile(GetConversationPath("test-id-123"), &stored)
	if stored.ID != "test-id-123" {
		t.Errorf("stored ID = %q", stored.ID)
	}
}

// TestGetConversationNotFound tests the nil-without-error contract
func TestGetConversationNotFound(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	conv, err := GetConversation("does-not-exist")
	helper.AssertNoError(err, "missing conversation should not error")
	if conv != nil {
		t.Errorf("expected nil conversation, got %+v", conv)
	}
}

// TestGetConversationInvalidJSON tests that corrupt files surface an error
func TestGetConversationInvalidJSON(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	if err := EnsureDataDir(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(GetConversationPath("corrupt"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := GetConversation("corrupt")
	helper.AssertError(err, "corrupt JSON should error")
}

// TestSaveAndGetConversation tests the round trip
func TestSaveAndGetConversation(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	original := SampleStoredConversation("round-trip")
	err := SaveConversation(original)
	helper.AssertNoError(err, "SaveConversation should succeed")

	loaded, err := GetConversation("round-trip")
	helper.AssertNoError(err, "GetConversation should succeed")
	if loaded == nil {
		t.Fatal("expected conversation")
	}
	if loaded.Title != "Test Conversation" {
		t.Errorf("Title = %q", loaded.Title)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("Messages = %d, want 2", len(loaded.Messages))
	}
	if loaded.Messages[0].Role != "user" {
		t.Errorf("first role = %q", loaded.Messages[0].Role)
	}
}

// TestListConversations tests metadata listing and ordering
func TestListConversations(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	older := SampleStoredConversation("older")
	older.CreatedAt = testTime()
	newer := SampleStoredConversation("newer")
	newer.CreatedAt = testTime().Add(time.Hour)

	if err := SaveConversation(older); err != nil {
		t.Fatal(err)
	}
	if err := SaveConversation(newer); err != nil {
		t.Fatal(err)
	}

	// Invalid files are skipped silently
	if err := os.WriteFile(filepath.Join(DataDir, "bad.json"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := ListConversations()
	helper.AssertNoError(err, "ListConversations should succeed")

	if len(list) != 2 {
		t.Fatalf("got %d conversations, want 2", len(list))
	}
	if list[0].ID != "newer" || list[1].ID != "older" {
		t.Errorf("order = [%s, %s], want newest first", list[0].ID, list[1].ID)
	}
	if list[0].MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", list[0].MessageCount)
	}
}

// TestListConversationsEmpty tests the empty-slice contract
func TestListConversationsEmpty(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	list, err := ListConversations()
	helper.AssertNoError(err, "ListConversations should succeed")
	if list == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(list) != 0 {
		t.Errorf("got %d conversations, want 0", len(list))
	}
}

// TestAddUserMessage tests appending a user message
func TestAddUserMessage(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	if _, err := CreateConversation("conv"); err != nil {
		t.Fatal(err)
	}

	err := AddUserMessage("conv", "First message")
	helper.AssertNoError(err, "AddUserMessage should succeed")

	conv, err := GetConversation("conv")
	helper.AssertNoError(err, "GetConversation should succeed")
	if len(conv.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(conv.Messages))
	}
	if conv.Messages[0].Role != "user" || conv.Messages[0].Content != "First message" {
		t.Errorf("message = %+v", conv.Messages[0])
	}

	// Missing conversation errors
	err = AddUserMessage("missing", "hello")
	helper.AssertError(err, "missing conversation should error")
}

// TestAddAssistantMessage tests appending an assistant message with citations
func TestAddAssistantMessage(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	if _, err := CreateConversation("conv"); err != nil {
		t.Fatal(err)
	}

	citations := []llm.Citation{{Title: "Benchmark", Text: "excerpt", Source: "Knowledge Base"}}
	err := AddAssistantMessage("conv", "Here is what I found", citations)
	helper.AssertNoError(err, "AddAssistantMessage should succeed")

	conv, err := GetConversation("conv")
	helper.AssertNoError(err, "GetConversation should succeed")
	if len(conv.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(conv.Messages))
	}
	msg := conv.Messages[0]
	if msg.Role != "assistant" {
		t.Errorf("role = %q", msg.Role)
	}
	if len(msg.Citations) != 1 || msg.Citations[0].Title != "Benchmark" {
		t.Errorf("citations = %v", msg.Citations)
	}
}

// TestUpdateConversationTitle tests title updates
func TestUpdateConversationTitle(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup()
	helper.UseTempDataDir()

	if _, err := CreateConversation("conv"); err != nil {
		t.Fatal(err)
	}

	err := UpdateConversationTitle("conv", "Onboarding Drop-off Investigation")
	helper.AssertNoError(err, "UpdateConversationTitle should succeed")

	conv, err := GetConversation("conv")
	helper.AssertNoError(err, "GetConversation should succeed")
	if conv.Title != "Onboarding Drop-off Investigation" {
		t.Errorf("Title = %q", conv.Title)
	}

	err = UpdateConversationTitle("missing", "t")
	helper.AssertError(err, "missing conversation should error")
}

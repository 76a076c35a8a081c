package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"problem-navigator/agents"
	"problem-navigator/llm"
)

// Conversation is a stored conversation with its full message history.
type Conversation struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Title     string           `json:"title"`
	Messages  []agents.Message `json:"messages"`
}

// ConversationMetadata is the listing view of a conversation.
type ConversationMetadata struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
}

// EnsureDataDir ensures the data directory exists.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir, 0755)
}

// GetConversationPath returns the file path for a conversation.
func GetConversationPath(conversationID string) string {
	return filepath.Join(DataDir, conversationID+".json")
}

// CreateConversation creates a new conversation with the given ID.
// Initializes an empty conversation with default title and saves it to disk.
func CreateConversation(conversationID string) (*Conversation, error) {
	if err := EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conversation := &Conversation{
		ID:        conversationID,
		CreatedAt: time.Now().UTC(),
		Title:     "New Conversation",
		Messages:  []agents.Message{},
	}

	if err := SaveConversation(conversation); err != nil {
		return nil, err
	}

	return conversation, nil
}

// GetConversation loads a conversation from storage by ID.
// Returns nil without error if the conversation doesn't exist.
func GetConversation(conversationID string) (*Conversation, error) {
	path := GetConversationPath(conversationID)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // Not found, return nil without error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conversation Conversation
	if err := json.Unmarshal(data, &conversation); err != nil {
		return nil, fmt.Errorf("failed to parse conversation JSON: %w", err)
	}

	return &conversation, nil
}

// SaveConversation writes the conversation as formatted JSON to disk.
func SaveConversation(conversation *Conversation) error {
	if err := EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(conversation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	path := GetConversationPath(conversation.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write conversation file: %w", err)
	}

	return nil
}

// ListConversations lists all conversations with metadata only, sorted by
// creation time newest first. Silently skips invalid or unreadable files.
func ListConversations() ([]ConversationMetadata, error) {
	if err := EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	entries, err := os.ReadDir(DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	// Initialize with empty slice to avoid null in JSON
	conversations := make([]ConversationMetadata, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(DataDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue // Skip files we can't read
		}

		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue // Skip invalid JSON
		}

		conversations = append(conversations, ConversationMetadata{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			Title:        conv.Title,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})

	return conversations, nil
}

// AddUserMessage appends a user message to a conversation and saves it.
// Returns an error if the conversation doesn't exist or saving fails.
func AddUserMessage(conversationID string, content string) error {
	conversation, err := GetConversation(conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation %s not found", conversationID)
	}

	conversation.Messages = append(conversation.Messages, agents.Message{
		Role:    "user",
		Content: content,
	})

	return SaveConversation(conversation)
}

// AddAssistantMessage appends an assistant message, carrying any knowledge
// base citations the response was grounded on.
func AddAssistantMessage(conversationID string, content string, citations []llm.Citation) error {
	conversation, err := GetConversation(conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation %s not found", conversationID)
	}

	conversation.Messages = append(conversation.Messages, agents.Message{
		Role:      "assistant",
		Content:   content,
		Citations: citations,
	})

	return SaveConversation(conversation)
}

// UpdateConversationTitle updates the title of a conversation.
func UpdateConversationTitle(conversationID string, title string) error {
	conversation, err := GetConversation(conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("conversation %s not found", conversationID)
	}

	conversation.Title = title

	return SaveConversation(conversation)
}

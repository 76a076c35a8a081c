package main

import (
	"sync"
	"time"

	"problem-navigator/agents"
)

// DiagnosisCache provides thread-safe per-conversation caching of diagnoses.
// A cached entry expires after the TTL or when the conversation gains a new
// message.
type DiagnosisCache struct {
	mu      sync.RWMutex
	entries map[string]diagnosisEntry
	ttl     time.Duration
}

type diagnosisEntry struct {
	diagnosis    agents.Diagnosis
	messageCount int
	cachedAt     time.Time
}

// NewDiagnosisCache creates a diagnosis cache with the specified TTL
func NewDiagnosisCache(ttl time.Duration) *DiagnosisCache {
	return &DiagnosisCache{
		entries: make(map[string]diagnosisEntry),
		ttl:     ttl,
	}
}

// Get retrieves a cached diagnosis if it is fresh and the conversation has
// not grown since it was computed. Returns a copy to prevent external
// modifications.
func (c *DiagnosisCache) Get(conversationID string, messageCount int) (*agents.Diagnosis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[conversationID]
	if !ok {
		return nil, false
	}
	if entry.messageCount != messageCount {
		return nil, false
	}
	if time.Since(entry.cachedAt) > c.ttl {
		return nil, false
	}

	diagnosis := entry.diagnosis
	return &diagnosis, true
}

// Set stores a diagnosis for a conversation at a given message count.
func (c *DiagnosisCache) Set(conversationID string, messageCount int, diagnosis *agents.Diagnosis) {
	if diagnosis == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[conversationID] = diagnosisEntry{
		diagnosis:    *diagnosis,
		messageCount: messageCount,
		cachedAt:     time.Now(),
	}
}

// Invalidate removes the cached diagnosis for one conversation.
func (c *DiagnosisCache) Invalidate(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, conversationID)
}

// Clear removes all cached diagnoses.
func (c *DiagnosisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]diagnosisEntry)
}

// Size returns the number of cached diagnoses.
func (c *DiagnosisCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

package agent

import (
	"sync"
)

// Exchange is one completed (query, response excerpt) pair.
type Exchange struct {
	Query           string `json:"query"`
	ResponseExcerpt string `json:"response_excerpt"`
}

// ContextStore is a bounded, ordered buffer of recent exchanges. Appending
// beyond the bound evicts the oldest entry. It exists solely to enrich the
// intent classifier's input.
type ContextStore struct {
	mu           sync.Mutex
	entries      []Exchange
	maxLen       int
	excerptLimit int
}

// NewContextStore creates a store holding at most maxLen exchanges, with
// response excerpts truncated to excerptLimit bytes.
func NewContextStore(maxLen, excerptLimit int) *ContextStore {
	if maxLen <= 0 {
		maxLen = 3
	}
	if excerptLimit <= 0 {
		excerptLimit = 300
	}
	return &ContextStore{
		maxLen:       maxLen,
		excerptLimit: excerptLimit,
	}
}

// Append records a completed exchange, evicting the oldest entry when full.
// Only called after a response is fully produced.
func (s *ContextStore) Append(query, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Exchange{
		Query:           query,
		ResponseExcerpt: truncateString(response, s.excerptLimit),
	})
	if len(s.entries) > s.maxLen {
		s.entries = s.entries[len(s.entries)-s.maxLen:]
	}
}

// Recent returns up to n most recent exchanges, oldest first.
func (s *ContextStore) Recent(n int) []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.entries) == 0 {
		return nil
	}
	start := 0
	if len(s.entries) > n {
		start = len(s.entries) - n
	}
	out := make([]Exchange, len(s.entries)-start)
	copy(out, s.entries[start:])
	return out
}

// Len returns the number of stored exchanges.
func (s *ContextStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear empties the store.
func (s *ContextStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

package activity

import (
	"sync"
	"time"
)

// Kind identifies what happened to a task.
type Kind string

const (
	KindCreated       Kind = "created"
	KindUpdated       Kind = "updated"
	KindStatusChanged Kind = "status_changed"
	KindDeleted       Kind = "deleted"
)

// Entry is a single line of the activity feed.
type Entry struct {
	TaskID  string    `json:"task_id"`
	Title   string    `json:"title"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 20

// Store keeps the most recent entries in a ring buffer.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewStore creates a store that retains at most limit entries.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{entries: make([]Entry, limit)}
}

// Record adds an entry, evicting the oldest when full.
func (s *Store) Record(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = e
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (s *Store) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.size()
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out
}

// size returns the number of retained entries. s.mu must be held.
func (s *Store) size() int {
	if s.full {
		return len(s.entries)
	}
	return s.next
}

package history

import (
	"sync"

	"rinktally/internal/stats"
)

// Capacity is the maximum number of undoable changes kept
const Capacity = 25

// Entry is one applied delta that can be undone
type Entry struct {
	Player int            `json:"player"`
	Stat   stats.StatType `json:"stat"`
	Delta  int            `json:"delta"`
}

// Inverse returns the delta that undoes this entry
func (e Entry) Inverse() int {
	return -e.Delta
}

// Stack is a bounded LIFO of applied deltas. The oldest entry is evicted
// once a push would exceed the capacity; the newest entry is always last.
type Stack struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewStack creates a stack holding at most Capacity entries
func NewStack() *Stack {
	return &Stack{limit: Capacity}
}

// Push records a delta, evicting the oldest entry when full
func (s *Stack) Push(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
}

// Pop removes and returns the most recent entry
func (s *Stack) Pop() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return Entry{}, false
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return last, true
}

// Len returns the number of entries
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Empty reports whether there is nothing to undo
func (s *Stack) Empty() bool {
	return s.Len() == 0
}

// Clear drops every entry
func (s *Stack) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Entries returns a copy, oldest first
func (s *Stack) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

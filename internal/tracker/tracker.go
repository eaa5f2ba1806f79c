// Package tracker remembers which invoice numbers have been seen during a run.
package tracker

import "sync"

// StateStore is the set of processed invoice numbers for one process
// lifetime. It only grows; there is no way to unmark a number.
//
// The store does no format validation: empty or malformed numbers are
// tracked the same way as well-formed ones.
type StateStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewStateStore returns an empty store.
func NewStateStore() *StateStore {
	return &StateStore{seen: make(map[string]struct{})}
}

// IsDuplicate reports whether number has been marked before.
func (s *StateStore) IsDuplicate(number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[number]
	return ok
}

// MarkProcessed adds number to the store. Marking twice is the same as once.
func (s *StateStore) MarkProcessed(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[number] = struct{}{}
}

// CheckAndMark returns true and marks number when it has not been seen,
// and returns false without touching the store otherwise. The lookup and
// the insert happen under one lock so the first caller wins.
func (s *StateStore) CheckAndMark(number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[number]; ok {
		return false
	}
	s.seen[number] = struct{}{}
	return true
}

// Len returns how many distinct numbers have been marked.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

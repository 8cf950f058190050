// Package busy tracks which entities have an operation in flight. Acquire
// is all-or-nothing, so batch operations never observe a half-marked set.
package busy

import (
	"sync"
)

// Set maps entity keys to the kind of operation currently holding them.
type Set[K comparable] struct {
	mu    sync.Mutex
	items map[K]string
}

func New[K comparable]() *Set[K] {
	return &Set[K]{items: make(map[K]string)}
}

// Acquire marks every key as busy with kind. If any key is already busy,
// nothing is marked and the busy keys are returned.
func (s *Set[K]) Acquire(kind string, keys ...K) []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	var held []K
	for _, k := range keys {
		if _, ok := s.items[k]; ok {
			held = append(held, k)
		}
	}
	if len(held) > 0 {
		return held
	}
	for _, k := range keys {
		s.items[k] = kind
	}
	return nil
}

// Release clears exactly the given keys.
func (s *Set[K]) Release(keys ...K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.items, k)
	}
}

// Has reports whether k is busy.
func (s *Set[K]) Has(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[k]
	return ok
}

// Kind returns the operation kind holding k, or "" when k is idle.
func (s *Set[K]) Kind(k K) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[k]
}

func (s *Set[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

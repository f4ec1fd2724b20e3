package store

import (
	"sync"

	"labscope/domain/catalog"
)

// Store holds the immutable snapshot of the last successfully fetched
// collection for one resource. Each successful fetch fully replaces prior
// data; there are no merge or patch semantics, and a failed or superseded
// fetch never touches the snapshot.
//
// Version increments on every Replace so derived views can cheaply detect
// that their input changed.
type Store struct {
	mu      sync.RWMutex
	snap    catalog.Collection
	index   map[string]int
	version uint64
}

// New creates an empty store
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Replace atomically swaps the current snapshot
func (s *Store) Replace(c catalog.Collection) {
	index := make(map[string]int, len(c))
	for i, r := range c {
		if _, dup := index[r.Code]; !dup {
			index[r.Code] = i
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = c
	s.index = index
	s.version++
}

// Current returns the snapshot and its version. Callers must treat the
// returned collection as read-only.
func (s *Store) Current() (catalog.Collection, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.version
}

// Lookup resolves a record by code in O(1)
func (s *Store) Lookup(code string) (catalog.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[code]
	if !ok {
		return catalog.Record{}, false
	}
	return s.snap[i], true
}

// Len returns the snapshot size
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap)
}

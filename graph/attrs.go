package graph

import "sync"

// Store is the attribute store: the scoped key-value substrate a graph
// invocation reads from and writes to. Multiple nodes of one ready set may
// commit concurrently, so all access is serialized here; a node's output is
// committed as a single batch after its forward returns, never key by key.
type Store struct {
	mu     sync.RWMutex
	values Payload
}

// NewStore creates a store seeded with the given payload. The seed is
// deep-copied so the caller keeps ownership of its map.
func NewStore(seed Payload) *Store {
	s := &Store{values: make(Payload)}
	for k, v := range seed {
		s.values[k] = v.Clone()
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a single value under key.
func (s *Store) Set(key string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// Commit writes every entry of p atomically. Readers never observe a
// half-applied commit.
func (s *Store) Commit(p Payload) {
	if len(p) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range p {
		s.values[k] = v
	}
}

// Snapshot returns a deep copy of the current contents.
func (s *Store) Snapshot() Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

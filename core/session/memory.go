package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore is a volatile in-process Store backed by a map shared
// across all requests for the process lifetime. It is intended for
// development and single-instance deployments; nothing survives a
// restart and there is no TTL or garbage collection for abandoned
// sessions — entries disappear only when a session is emptied.
//
// Concurrent writers to the same id race with last-write-wins
// semantics; no cross-key transactional guarantee is offered.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]any
}

// NewMemoryStore creates an empty volatile session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]any),
	}
}

// Resolve returns the stored data for a known key. An empty or unknown
// key yields a fresh random id with empty data without touching the
// store. Returned data is a copy, so callers never alias the stored map.
func (s *MemoryStore) Resolve(_ context.Context, key string) (string, map[string]any, error) {
	if key != "" {
		s.mu.RLock()
		data, ok := s.sessions[key]
		s.mu.RUnlock()
		if ok {
			return key, maps.Clone(data), nil
		}
	}

	id, err := newSessionID()
	if err != nil {
		return "", nil, err
	}
	return id, make(map[string]any), nil
}

// Write unconditionally overwrites the entry for key with a copy of data.
func (s *MemoryStore) Write(_ context.Context, key string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = maps.Clone(data)
	return key, nil
}

// Delete removes key from the store; deleting an absent key is a no-op.
func (s *MemoryStore) Delete(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return key, nil
}

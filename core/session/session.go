package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

// Session is a per-request mutable key-value container tied to a client
// via a cookie-carried identifier. It tracks two derived flags, accessed
// and modified, which are recomputed fresh for every request and are
// never persisted. All data access goes through synchronized methods so
// a session may be shared across goroutines within a single request.
type Session struct {
	id string

	mu   sync.RWMutex
	data map[string]any

	// One-way flags: once set they stay set for the session's lifetime.
	accessed atomic.Bool
	modified atomic.Bool
}

// New creates a session around the id and data returned by a Store.
// The session takes ownership of data; callers must not retain it.
func New(id string, data map[string]any) *Session {
	if data == nil {
		data = make(map[string]any)
	}
	return &Session{id: id, data: data}
}

// ID returns the session identifier. For stateless token stores this is
// the signed token itself.
func (s *Session) ID() string {
	return s.id
}

// IsAccessed reports whether session data has been read or written
// during this request.
func (s *Session) IsAccessed() bool {
	return s.accessed.Load()
}

// IsModified reports whether session data has been written during this
// request and therefore needs saving.
func (s *Session) IsModified() bool {
	return s.modified.Load()
}

// IsEmpty reports whether the session holds no data. Empty sessions are
// deleted from storage when the response is finalized.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data) == 0
}

// Get returns the value stored under key. Reading marks the session as
// accessed.
func (s *Session) Get(key string) (any, bool) {
	s.accessed.Store(true)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Snapshot returns a shallow copy of the session data. Reading marks
// the session as accessed.
func (s *Session) Snapshot() map[string]any {
	s.accessed.Store(true)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

// Set stores value under key, marking the session as accessed and
// modified.
func (s *Session) Set(key string, value any) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key from the session data, marking the session as
// accessed and modified even when the key is absent.
func (s *Session) Delete(key string) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Update applies fn to the session data while holding the write lock,
// so read-modify-write sequences are atomic with respect to other
// session methods. Marks the session as accessed and modified.
func (s *Session) Update(fn func(data map[string]any)) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// SetIfEquals atomically replaces the value under key only when the
// current value deep-equals old. A nil old matches an absent key.
// Returns true when the swap happened. The session is marked accessed
// either way and modified only on a successful swap.
func (s *Session) SetIfEquals(key string, old, value any) bool {
	s.accessed.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[key]
	if !ok {
		if old != nil {
			return false
		}
	} else if !reflect.DeepEqual(current, old) {
		return false
	}

	s.data[key] = value
	s.modified.Store(true)
	return true
}

// touch flips both flags; they never transition back to false.
func (s *Session) touch() {
	s.accessed.Store(true)
	s.modified.Store(true)
}

// idLength is the number of random bytes in a generated session id.
const idLength = 48

// newSessionID creates a cryptographically secure random identifier,
// 48 bytes encoded as base64 URL-safe string without padding.
func newSessionID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

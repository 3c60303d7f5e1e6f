package session

import "context"

// Store defines the persistence contract for session data.
// Implementations must handle concurrent access safely.
//
// Resolve never fails a request because of a missing or unreadable
// session: an empty key, an unknown key, or a backend read failure all
// yield a fresh id with empty data and a nil error. Write and Delete
// propagate backend failures to the caller.
type Store interface {
	// Resolve returns the id and data for key, or a fresh id with empty
	// data when key is empty, unknown, or unreadable. For stateless
	// stores the returned id may differ from key (it encodes the data).
	Resolve(ctx context.Context, key string) (string, map[string]any, error)

	// Write upserts data under key and returns the key the client
	// should present next time, which may differ from key.
	Write(ctx context.Context, key string, data map[string]any) (string, error)

	// Delete removes key from the store. Deleting an absent key is not
	// an error. Returns the key.
	Delete(ctx context.Context, key string) (string, error)
}

package session_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/core/session"
)

func TestMemoryStore_ResolveEmptyKey(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	id, data, err := store.Resolve(ctx, "")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Empty(t, data)

	// 48 random bytes, base64url without padding.
	raw, err := base64.RawURLEncoding.DecodeString(id)
	require.NoError(t, err)
	assert.Len(t, raw, 48)
}

func TestMemoryStore_ResolveUnknownKeyBehavesLikeEmpty(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	id, data, err := store.Resolve(ctx, "completely-unknown")

	require.NoError(t, err)
	assert.NotEqual(t, "completely-unknown", id, "unknown keys must never be echoed back")
	assert.Empty(t, data)

	// The miss must not create an entry: resolving the fresh id again
	// (never written) yields yet another id.
	id2, _, err := store.Resolve(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestMemoryStore_FreshIDsAreUnique(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, _, err := store.Resolve(ctx, "")
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "generated duplicate session id")
		seen[id] = struct{}{}
	}
}

func TestMemoryStore_WriteResolveRoundTrip(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	key, err := store.Write(ctx, "k1", map[string]any{"foo": 2, "bar": "baz"})
	require.NoError(t, err)
	assert.Equal(t, "k1", key)

	id, data, err := store.Resolve(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "k1", id)
	assert.Equal(t, map[string]any{"foo": 2, "bar": "baz"}, data)
}

func TestMemoryStore_WriteOverwrites(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Write(ctx, "k1", map[string]any{"foo": 1})
	require.NoError(t, err)
	_, err = store.Write(ctx, "k1", map[string]any{"bar": 2})
	require.NoError(t, err)

	_, data, err := store.Resolve(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bar": 2}, data)
}

func TestMemoryStore_ResolveReturnsCopy(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Write(ctx, "k1", map[string]any{"foo": 1})
	require.NoError(t, err)

	_, data, err := store.Resolve(ctx, "k1")
	require.NoError(t, err)
	data["foo"] = 999

	_, again, err := store.Resolve(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 1, again["foo"], "callers must not alias the stored map")
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()

	_, err := store.Write(ctx, "k1", map[string]any{"foo": 1})
	require.NoError(t, err)

	key, err := store.Delete(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "k1", key)

	// Deleting an absent key is not an error.
	_, err = store.Delete(ctx, "k1")
	require.NoError(t, err)

	// The entry is gone: resolving the old key issues a fresh session.
	id, data, err := store.Resolve(ctx, "k1")
	require.NoError(t, err)
	assert.NotEqual(t, "k1", id)
	assert.Empty(t, data)
}

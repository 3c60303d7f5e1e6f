package session_test

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/core/session"
)

var tokenSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewTokenStore_SecretTooShort(t *testing.T) {
	t.Parallel()

	_, err := session.NewTokenStore([]byte("short"))

	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrSecretTooShort)
}

func TestNewTokenStore_RejectsAsymmetricMethod(t *testing.T) {
	t.Parallel()

	_, err := session.NewTokenStore(tokenSecret, session.WithSigningMethod(jwt.SigningMethodRS256))

	require.Error(t, err)
}

func TestTokenStore_ResolveEmptyKeyIssuesSignedEmptyToken(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)
	ctx := context.Background()

	id, data, err := store.Resolve(ctx, "")

	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NotEmpty(t, id)

	// The issued id is itself a valid token: resolving it round-trips.
	id2, data2, err := store.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.Empty(t, data2)
}

func TestTokenStore_WriteResolveRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := store.Write(ctx, "", map[string]any{"foo": 3, "name": "ada"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, data, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, id, "the token is self-describing")
	// Numbers round-trip through JSON as float64.
	assert.Equal(t, float64(3), data["foo"])
	assert.Equal(t, "ada", data["name"])
}

func TestTokenStore_TokenChangesWithData(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)
	ctx := context.Background()

	t1, err := store.Write(ctx, "", map[string]any{"foo": 1})
	require.NoError(t, err)
	t2, err := store.Write(ctx, t1, map[string]any{"foo": 2})
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2, "re-signed payload must produce a different token")
}

func TestTokenStore_TamperedTokenYieldsFreshSession(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := store.Write(ctx, "", map[string]any{"admin": true})
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	id, data, err := store.Resolve(ctx, tampered)

	require.NoError(t, err, "verification failure must never propagate")
	assert.NotEqual(t, tampered, id)
	assert.Empty(t, data)
}

func TestTokenStore_WrongSecretYieldsFreshSession(t *testing.T) {
	t.Parallel()

	theirs, err := session.NewTokenStore([]byte("another-secret-another-secret-xx"))
	require.NoError(t, err)
	ours, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := theirs.Write(ctx, "", map[string]any{"foo": 1})
	require.NoError(t, err)

	id, data, err := ours.Resolve(ctx, token)

	require.NoError(t, err)
	assert.NotEqual(t, token, id)
	assert.Empty(t, data)
}

func TestTokenStore_GarbageTokenYieldsFreshSession(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)

	id, data, err := store.Resolve(context.Background(), "not.a.token")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Empty(t, data)
}

func TestTokenStore_DeleteIsNoop(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := store.Write(ctx, "", map[string]any{"foo": 1})
	require.NoError(t, err)

	key, err := store.Delete(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, key)

	// The token still resolves: nothing server-side was removed.
	_, data, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, float64(1), data["foo"])
}

func TestTokenStore_EncryptedRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := session.NewTokenStore(tokenSecret, session.WithEncryption(""))
	require.NoError(t, err)
	ctx := context.Background()

	token, err := store.Write(ctx, "", map[string]any{"foo": 3})
	require.NoError(t, err)

	// JWE compact serialization has five segments and an opaque payload.
	assert.Len(t, strings.Split(token, "."), 5)
	assert.NotContains(t, token, "foo")

	id, data, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, id)
	assert.Equal(t, float64(3), data["foo"])
}

func TestTokenStore_EncryptedWrongSecretYieldsFreshSession(t *testing.T) {
	t.Parallel()

	theirs, err := session.NewTokenStore([]byte("another-secret-another-secret-xx"), session.WithEncryption(""))
	require.NoError(t, err)
	ours, err := session.NewTokenStore(tokenSecret, session.WithEncryption(""))
	require.NoError(t, err)
	ctx := context.Background()

	token, err := theirs.Write(ctx, "", map[string]any{"foo": 1})
	require.NoError(t, err)

	id, data, err := ours.Resolve(ctx, token)

	require.NoError(t, err)
	assert.NotEqual(t, token, id)
	assert.Empty(t, data)
}

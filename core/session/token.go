package session

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// minSecretLength is the minimum token secret length in bytes.
const minSecretLength = 32

// dataClaim is the JWT claim carrying the session data map.
const dataClaim = "data"

// TokenStore is a stateless Store: the session "key" IS the session
// data, serialized into a signed compact token held entirely by the
// client. Nothing is persisted server-side, so Delete is a no-op and
// every Write returns a new token encoding the current data.
//
// Values round-trip through JSON, so numbers come back as float64 and
// nested structures as map[string]any / []any.
type TokenStore struct {
	codec tokenCodec
}

// tokenCodec serializes a data map to a compact token and back.
type tokenCodec interface {
	encode(data map[string]any) (string, error)
	decode(token string) (map[string]any, error)
}

type tokenConfig struct {
	method     jwt.SigningMethod
	encrypted  bool
	encryption jose.ContentEncryption
}

// TokenOption configures a TokenStore.
type TokenOption func(*tokenConfig)

// WithSigningMethod sets the JWS signing algorithm. Only HMAC methods
// are supported since the store holds a single symmetric secret.
// Default is HS256.
func WithSigningMethod(method jwt.SigningMethod) TokenOption {
	return func(c *tokenConfig) {
		if method != nil {
			c.method = method
		}
	}
}

// WithEncryption switches the store from signed (JWS) to
// signed-and-encrypted (JWE) tokens, hiding session contents from the
// client. The content encryption algorithm provides integrity via AEAD.
// Default algorithm is A256GCM.
func WithEncryption(enc jose.ContentEncryption) TokenOption {
	return func(c *tokenConfig) {
		c.encrypted = true
		if enc != "" {
			c.encryption = enc
		}
	}
}

// NewTokenStore creates a stateless signed-token store using the given
// secret. The secret must be at least 32 bytes.
func NewTokenStore(secret []byte, opts ...TokenOption) (*TokenStore, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrSecretTooShort, len(secret))
	}

	cfg := tokenConfig{
		method:     jwt.SigningMethodHS256,
		encryption: jose.A256GCM,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.encrypted {
		codec, err := newJWECodec(secret, cfg.encryption)
		if err != nil {
			return nil, err
		}
		return &TokenStore{codec: codec}, nil
	}

	if _, ok := cfg.method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q: symmetric secret requires HMAC", cfg.method.Alg())
	}

	return &TokenStore{codec: &jwsCodec{secret: secret, method: cfg.method}}, nil
}

// Resolve verifies key as a token and returns its embedded data. An
// empty key or any verification failure (tampering, wrong secret,
// malformed token) is treated as "no session": a fresh empty token is
// signed and returned, never an error.
func (s *TokenStore) Resolve(_ context.Context, key string) (string, map[string]any, error) {
	if key != "" {
		if data, err := s.codec.decode(key); err == nil {
			return key, data, nil
		}
	}

	token, err := s.codec.encode(map[string]any{})
	if err != nil {
		return "", nil, err
	}
	return token, make(map[string]any), nil
}

// Write signs data into a new token and returns it as the key the
// client must present next time. The supplied key is ignored; the
// token is self-describing.
func (s *TokenStore) Write(_ context.Context, _ string, data map[string]any) (string, error) {
	return s.codec.encode(data)
}

// Delete is a no-op: there is no server-side state to remove.
func (s *TokenStore) Delete(_ context.Context, key string) (string, error) {
	return key, nil
}

// jwsCodec emits HMAC-signed JWS compact tokens via golang-jwt.
type jwsCodec struct {
	secret []byte
	method jwt.SigningMethod
}

func (c *jwsCodec) encode(data map[string]any) (string, error) {
	token := jwt.NewWithClaims(c.method, jwt.MapClaims{dataClaim: data})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", errors.Join(ErrEncodeToken, err)
	}
	return signed, nil
}

func (c *jwsCodec) decode(token string) (map[string]any, error) {
	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	data, ok := claims[dataClaim].(map[string]any)
	if !ok {
		return nil, ErrInvalidToken
	}
	return data, nil
}

// jweCodec emits encrypted JWE compact tokens via go-jose with direct
// symmetric encryption. The content key is derived from the secret so
// any >=32-byte secret works regardless of the algorithm's key size.
type jweCodec struct {
	key       []byte
	enc       jose.ContentEncryption
	encrypter jose.Encrypter
}

func newJWECodec(secret []byte, enc jose.ContentEncryption) (*jweCodec, error) {
	sum := sha256.Sum256(secret)
	key := sum[:]

	encrypter, err := jose.NewEncrypter(enc, jose.Recipient{
		Algorithm: jose.DIRECT,
		Key:       key,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token encrypter: %w", err)
	}

	return &jweCodec{key: key, enc: enc, encrypter: encrypter}, nil
}

func (c *jweCodec) encode(data map[string]any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", errors.Join(ErrEncodeToken, err)
	}

	obj, err := c.encrypter.Encrypt(payload)
	if err != nil {
		return "", errors.Join(ErrEncodeToken, err)
	}

	token, err := obj.CompactSerialize()
	if err != nil {
		return "", errors.Join(ErrEncodeToken, err)
	}
	return token, nil
}

func (c *jweCodec) decode(token string) (map[string]any, error) {
	obj, err := jose.ParseEncrypted(token,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{c.enc},
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	payload, err := obj.Decrypt(c.key)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, ErrInvalidToken
	}
	if data == nil {
		data = make(map[string]any)
	}
	return data, nil
}

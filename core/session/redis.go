package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists session data as JSON blobs in Redis, one key per
// session id under a configurable prefix. It is the durable counterpart
// to MemoryStore: read failures are neutralized by Resolve, write and
// delete failures propagate to the caller.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the Redis key namespace. Default is "session:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets a Redis-level expiration on written entries. Zero (the
// default) means entries never expire; expiry policy beyond this
// plumbing is the caller's concern.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// RedisConfig provides environment-based configuration for RedisStore.
type RedisConfig struct {
	KeyPrefix string        `env:"SESSION_REDIS_KEY_PREFIX" envDefault:"session:"`
	TTL       time.Duration `env:"SESSION_REDIS_TTL" envDefault:"0"`
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisStoreFromConfig creates a Redis-backed session store from
// configuration. The Redis client must be provided by the caller.
func NewRedisStoreFromConfig(cfg RedisConfig, client redis.UniversalClient) *RedisStore {
	opts := make([]RedisOption, 0, 2)
	if cfg.KeyPrefix != "" {
		opts = append(opts, WithKeyPrefix(cfg.KeyPrefix))
	}
	if cfg.TTL > 0 {
		opts = append(opts, WithTTL(cfg.TTL))
	}
	return NewRedisStore(client, opts...)
}

// Resolve fetches the data for a known key. An empty key, a missing
// entry, an unreachable backend, or a corrupt blob all yield a fresh id
// with empty data and a nil error.
func (s *RedisStore) Resolve(ctx context.Context, key string) (string, map[string]any, error) {
	if key != "" {
		raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if err == nil {
			var data map[string]any
			if err := json.Unmarshal(raw, &data); err == nil {
				if data == nil {
					data = make(map[string]any)
				}
				return key, data, nil
			}
		}
	}

	id, err := newSessionID()
	if err != nil {
		return "", nil, err
	}
	return id, make(map[string]any), nil
}

// Write upserts the JSON-encoded data under key.
func (s *RedisStore) Write(ctx context.Context, key string, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", errors.Join(ErrWriteSession, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return "", errors.Join(ErrWriteSession, err)
	}
	return key, nil
}

// Delete removes key from Redis; deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) (string, error) {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return "", errors.Join(ErrDeleteSession, err)
	}
	return key, nil
}

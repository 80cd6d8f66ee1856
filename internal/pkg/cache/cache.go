// Package cache provides a typed JSON cache on Redis used for public profile
// reads. A Nop store is used when Redis is not configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a typed key/value cache. Load returns (nil, nil) on a miss.
type Store[T any] interface {
	Load(ctx context.Context, key string) (*T, error)
	Save(ctx context.Context, key string, val *T) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore keeps JSON encoded values under "<prefix>:<key>" with a fixed TTL.
type RedisStore[T any] struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a RedisStore. A ttl of 0 means no expiration.
func NewRedisStore[T any](client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore[T]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load reads and decodes key.
func (s *RedisStore[T]) Load(ctx context.Context, key string) (*T, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache load %q: %w", key, err)
	}

	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("cache unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Save encodes val and stores it with the configured TTL.
func (s *RedisStore[T]) Save(ctx context.Context, key string, val *T) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache marshal %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache save %q: %w", key, err)
	}
	return nil
}

// Delete removes keys. Empty keys are skipped.
func (s *RedisStore[T]) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			full = append(full, s.fullKey(k))
		}
	}
	if len(full) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Nop is a Store that never holds anything.
type Nop[T any] struct{}

func (Nop[T]) Load(context.Context, string) (*T, error) { return nil, nil }
func (Nop[T]) Save(context.Context, string, *T) error   { return nil }
func (Nop[T]) Delete(context.Context, ...string) error  { return nil }

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

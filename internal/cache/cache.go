// Package cache provides the Redis-backed stock cache. Entries are
// serialized JSON payloads keyed by upper-case symbol and expire after a
// fixed TTL; there is no explicit invalidation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockpulse/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Store is a TTL'd key-value cache for serialized stock records.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// ReadThrough returns the cached payload for key if present; on a miss it
// runs compute, caches the result with the store TTL, and returns it.
// Cache transport errors degrade to a miss so a Redis outage never fails a
// read; compute errors propagate unchanged and nothing is cached.
func (s *Store) ReadThrough(ctx context.Context, key string, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	cached, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.Get().Warnw("cache get failed", "key", key, "error", err)
	}

	payload, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		logger.Get().Warnw("cache set failed", "key", key, "error", err)
	}
	return payload, nil
}

// Put stores payload under key with the store TTL, replacing any existing
// entry.
func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

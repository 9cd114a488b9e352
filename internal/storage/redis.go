package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisTier is the asynchronous durable tier: larger quota, reached
// over a connection that may not have been opened yet. When the client
// is absent the tier reports unavailable and the coordinator silently
// skips it rather than failing.
type RedisTier struct {
	client  *redis.Client
	prefix  string
	retrier *Retrier
}

// NewRedisClient connects and verifies a Redis client. Callers that
// cannot reach Redis pass a nil client to NewRedisTier and run with
// degraded durability.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewRedisTier wraps a possibly-nil Redis client as a storage tier.
func NewRedisTier(client *redis.Client, logger zerolog.Logger) *RedisTier {
	return &RedisTier{
		client:  client,
		prefix:  "pocketbank:",
		retrier: NewRetrier(logger),
	}
}

// Name implements Tier.
func (r *RedisTier) Name() string { return "redis" }

// Available implements Tier.
func (r *RedisTier) Available() bool { return r != nil && r.client != nil }

// Save implements Tier.
func (r *RedisTier) Save(ctx context.Context, key string, value []byte) error {
	if !r.Available() {
		return ErrTierUnavailable
	}
	return r.retrier.Retry(ctx, func() error {
		return r.client.Set(ctx, r.prefix+key, value, 0).Err()
	})
}

// Load implements Tier.
func (r *RedisTier) Load(ctx context.Context, key string) ([]byte, error) {
	if !r.Available() {
		return nil, ErrTierUnavailable
	}

	var value []byte
	err := r.retrier.Retry(ctx, func() error {
		res, err := r.client.Get(ctx, r.prefix+key).Bytes()
		if err != nil {
			return err
		}
		value = res
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis load: %w", err)
	}
	return value, nil
}

// Remove implements Tier.
func (r *RedisTier) Remove(ctx context.Context, key string) error {
	if !r.Available() {
		return ErrTierUnavailable
	}
	return r.retrier.Retry(ctx, func() error {
		return r.client.Del(ctx, r.prefix+key).Err()
	})
}

// Clear deletes every key under the tier's prefix, leaving unrelated
// keys on the same Redis untouched.
func (r *RedisTier) Clear(ctx context.Context) error {
	if !r.Available() {
		return ErrTierUnavailable
	}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

// UsedBytes sums the server-reported memory usage of the tier's keys,
// zero when the server cannot report it.
func (r *RedisTier) UsedBytes(ctx context.Context) int64 {
	if !r.Available() {
		return 0
	}
	var total int64
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if n, err := r.client.MemoryUsage(ctx, iter.Val()).Result(); err == nil {
			total += n
		}
	}
	return total
}

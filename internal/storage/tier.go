package storage

import (
	"context"
	"errors"
)

// Tier is one candidate backend in the prioritized fallback chain.
// Implementations return errors instead of panicking; the coordinator
// interprets any error as "this tier unavailable, try the next".
type Tier interface {
	// Name identifies the tier in logs and metrics.
	Name() string
	// Save stores value under key.
	Save(ctx context.Context, key string, value []byte) error
	// Load retrieves the value stored under key. Returns ErrNotFound
	// when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every key held by the tier.
	Clear(ctx context.Context) error
	// Available reports whether the tier can serve requests at all.
	// An unavailable tier is silently skipped.
	Available() bool
}

var (
	// ErrNotFound is returned by Load when the key is absent.
	ErrNotFound = errors.New("storage: key not found")

	// ErrValueTooLarge is returned by the synchronous file tier when a
	// value exceeds its per-value quota. The coordinator reacts by
	// skipping straight to the asynchronous tier.
	ErrValueTooLarge = errors.New("storage: value exceeds tier quota")

	// ErrTierUnavailable is returned when a tier cannot serve requests,
	// for example the async tier before its connection was opened.
	ErrTierUnavailable = errors.New("storage: tier unavailable")
)

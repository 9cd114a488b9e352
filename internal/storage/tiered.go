package storage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/pocketbank/internal/infrastructure/metrics"
)

// Usage reports storage consumption. Zero-filled when the platform
// cannot report it.
type Usage struct {
	UsedBytes  int64 `json:"usedBytes"`
	QuotaBytes int64 `json:"quotaBytes"`
}

// Tiered coordinates the fallback chain: memory first, then the
// synchronous SQLite tier, then the asynchronous Redis tier. No Save or
// Load ever returns an error to the caller; every tier fault is logged
// and the chain degrades to whatever durability remains, down to
// memory-only.
type Tiered struct {
	mem        *MemoryTier
	sqlite     *SQLiteTier
	redis      *RedisTier
	quotaBytes int64
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// Config holds Tiered dependencies. SQLite and Redis are both optional;
// a nil tier is skipped.
type Config struct {
	SQLite     *SQLiteTier
	Redis      *RedisTier
	QuotaBytes int64
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// NewTiered builds the coordinator with a fresh memory tier.
func NewTiered(cfg Config) *Tiered {
	return &Tiered{
		mem:        NewMemoryTier(),
		sqlite:     cfg.SQLite,
		redis:      cfg.Redis,
		quotaBytes: cfg.QuotaBytes,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// durableTiers returns the durable chain in priority order, skipping
// unavailable tiers.
func (t *Tiered) durableTiers() []Tier {
	var tiers []Tier
	if t.sqlite.Available() {
		tiers = append(tiers, t.sqlite)
	}
	if t.redis.Available() {
		tiers = append(tiers, t.redis)
	}
	return tiers
}

// Save writes the value to the memory cache and then to the first
// durable tier that accepts it. Oversized values skip the synchronous
// tier preemptively. Never fails; with no durable tier reachable the
// value lives in memory only.
func (t *Tiered) Save(ctx context.Context, key string, value []byte) {
	_ = t.mem.Save(ctx, key, value)

	for _, tier := range t.durableTiers() {
		// The SQLite tier refuses oversized values before touching the
		// file, which routes large payloads straight to Redis.
		if err := tier.Save(ctx, key, value); err != nil {
			t.fellThrough(tier.Name(), "save", err)
			continue
		}
		return
	}

	t.logger.Warn().Str("key", key).Msg("no durable tier accepted write, memory-only durability")
}

// SaveSync writes to the memory cache and the synchronous tier only.
// Used on teardown and first paint, where waiting on the asynchronous
// tier is not acceptable.
func (t *Tiered) SaveSync(key string, value []byte) {
	ctx := context.Background()
	_ = t.mem.Save(ctx, key, value)

	if !t.sqlite.Available() {
		return
	}
	if err := t.sqlite.Save(ctx, key, value); err != nil {
		t.fellThrough(t.sqlite.Name(), "save_sync", err)
	}
}

// Load checks memory, then the synchronous tier, then the asynchronous
// tier, populating the memory cache on a durable hit. The second return
// is false when no tier holds the key.
func (t *Tiered) Load(ctx context.Context, key string) ([]byte, bool) {
	if value, err := t.mem.Load(ctx, key); err == nil {
		return value, true
	}

	for _, tier := range t.durableTiers() {
		value, err := tier.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			t.fellThrough(tier.Name(), "load", err)
			continue
		}
		_ = t.mem.Save(ctx, key, value)
		return value, true
	}

	return nil, false
}

// LoadSync checks memory and the synchronous tier only.
func (t *Tiered) LoadSync(key string) ([]byte, bool) {
	ctx := context.Background()

	if value, err := t.mem.Load(ctx, key); err == nil {
		return value, true
	}
	if !t.sqlite.Available() {
		return nil, false
	}

	value, err := t.sqlite.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		t.fellThrough(t.sqlite.Name(), "load_sync", err)
		return nil, false
	}

	_ = t.mem.Save(ctx, key, value)
	return value, true
}

// Remove deletes the key from every tier. Faults are logged, not
// surfaced.
func (t *Tiered) Remove(ctx context.Context, key string) {
	_ = t.mem.Remove(ctx, key)
	for _, tier := range t.durableTiers() {
		if err := tier.Remove(ctx, key); err != nil {
			t.fellThrough(tier.Name(), "remove", err)
		}
	}
}

// Clear wipes every tier.
func (t *Tiered) Clear(ctx context.Context) {
	_ = t.mem.Clear(ctx)
	for _, tier := range t.durableTiers() {
		if err := tier.Clear(ctx); err != nil {
			t.fellThrough(tier.Name(), "clear", err)
		}
	}
}

// Usage reports used and quota bytes across the durable tiers,
// zero-filled where a tier cannot report.
func (t *Tiered) Usage(ctx context.Context) Usage {
	var used int64
	if t.sqlite.Available() {
		used += t.sqlite.FileSize()
	}
	if t.redis.Available() {
		used += t.redis.UsedBytes(ctx)
	}
	if t.metrics != nil {
		t.metrics.UsedBytes.Set(float64(used))
	}
	return Usage{UsedBytes: used, QuotaBytes: t.quotaBytes}
}

// RequestDurable asks, best-effort, that writes survive eviction.
// Reports whether the synchronous tier is configured durably.
func (t *Tiered) RequestDurable(ctx context.Context) bool {
	if !t.sqlite.Available() {
		return false
	}
	return t.sqlite.Durable(ctx)
}

// fellThrough records one tier fault and the fall-through to the next.
func (t *Tiered) fellThrough(tier, op string, err error) {
	t.logger.Warn().Err(err).Str("tier", tier).Str("op", op).Msg("storage tier fault, falling through")
	if t.metrics != nil {
		t.metrics.TierFaults.WithLabelValues(tier, op).Inc()
	}
}

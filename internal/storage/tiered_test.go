package storage

import (
	"bytes"
	"context"
	"testing"
)

func newTestTiered(t *testing.T, sqlite *SQLiteTier, redis *RedisTier) *Tiered {
	t.Helper()

	return NewTiered(Config{
		SQLite:     sqlite,
		Redis:      redis,
		QuotaBytes: 1 << 20,
		Logger:     testLogger(),
	})
}

func TestTieredSaveLoadRoundTrip(t *testing.T) {
	backend := newTestTiered(t, newTestSQLiteTier(t, 0), nil)
	ctx := context.Background()

	backend.Save(ctx, "state", []byte("value"))

	got, ok := backend.Load(ctx, "state")
	if !ok {
		t.Fatalf("expected load to find saved key")
	}
	if string(got) != "value" {
		t.Fatalf("expected value, got %s", got)
	}
}

func TestTieredFallsThroughToAsyncTierOnSyncFailure(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	sqlite := newTestSQLiteTier(t, 0)
	backend := newTestTiered(t, sqlite, NewRedisTier(client, testLogger()))
	ctx := context.Background()

	// Kill the synchronous tier so every write on it fails.
	sqlite.db.Close()

	backend.Save(ctx, "state", []byte("survived"))

	// Drop the memory cache to force the durable chain on read.
	_ = backend.mem.Clear(ctx)

	got, ok := backend.Load(ctx, "state")
	if !ok {
		t.Fatalf("expected value persisted via async tier")
	}
	if string(got) != "survived" {
		t.Fatalf("expected survived, got %s", got)
	}
}

func TestTieredOversizedValueSkipsSyncTier(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	sqlite := newTestSQLiteTier(t, 16)
	redisTier := NewRedisTier(client, testLogger())
	backend := newTestTiered(t, sqlite, redisTier)
	ctx := context.Background()

	big := bytes.Repeat([]byte("x"), 64)
	backend.Save(ctx, "blob", big)

	if _, err := sqlite.Load(ctx, "blob"); err == nil {
		t.Fatalf("expected oversized value to bypass sqlite tier")
	}
	got, err := redisTier.Load(ctx, "blob")
	if err != nil {
		t.Fatalf("expected oversized value in redis tier: %v", err)
	}
	if !bytes.Equal(got, big) {
		t.Fatalf("redis tier holds wrong payload")
	}
}

func TestTieredMemoryOnlyDurability(t *testing.T) {
	backend := newTestTiered(t, nil, nil)
	ctx := context.Background()

	backend.Save(ctx, "state", []byte("ephemeral"))

	got, ok := backend.Load(ctx, "state")
	if !ok || string(got) != "ephemeral" {
		t.Fatalf("expected memory-only save to be readable, got %q ok=%v", got, ok)
	}
}

func TestTieredLoadPopulatesMemoryCache(t *testing.T) {
	sqlite := newTestSQLiteTier(t, 0)
	backend := newTestTiered(t, sqlite, nil)
	ctx := context.Background()

	// Write directly to the durable tier, bypassing the cache.
	if err := sqlite.Save(ctx, "k", []byte("durable")); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	if _, err := backend.mem.Load(ctx, "k"); err != ErrNotFound {
		t.Fatalf("expected cold cache before load")
	}

	if _, ok := backend.Load(ctx, "k"); !ok {
		t.Fatalf("expected durable hit")
	}

	if _, err := backend.mem.Load(ctx, "k"); err != nil {
		t.Fatalf("expected cache populated after durable hit: %v", err)
	}
}

func TestTieredSyncPathIgnoresAsyncTier(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	redisTier := NewRedisTier(client, testLogger())
	backend := newTestTiered(t, newTestSQLiteTier(t, 0), redisTier)

	backend.SaveSync("state", []byte("sync-only"))

	if _, err := redisTier.Load(context.Background(), "state"); err == nil {
		t.Fatalf("expected sync save to skip the async tier")
	}

	got, ok := backend.LoadSync("state")
	if !ok || string(got) != "sync-only" {
		t.Fatalf("expected sync load hit, got %q ok=%v", got, ok)
	}
}

func TestTieredRemoveAndClearSpanTiers(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	sqlite := newTestSQLiteTier(t, 0)
	redisTier := NewRedisTier(client, testLogger())
	backend := newTestTiered(t, sqlite, redisTier)
	ctx := context.Background()

	backend.Save(ctx, "a", []byte("1"))
	_ = redisTier.Save(ctx, "a", []byte("1"))

	backend.Remove(ctx, "a")
	if _, ok := backend.Load(ctx, "a"); ok {
		t.Fatalf("expected key removed from all tiers")
	}

	backend.Save(ctx, "b", []byte("2"))
	backend.Clear(ctx)
	if _, ok := backend.Load(ctx, "b"); ok {
		t.Fatalf("expected all tiers cleared")
	}
}

func TestTieredUsageReportsSQLiteFile(t *testing.T) {
	backend := newTestTiered(t, newTestSQLiteTier(t, 0), nil)
	ctx := context.Background()

	backend.Save(ctx, "state", bytes.Repeat([]byte("x"), 512))

	usage := backend.Usage(ctx)
	if usage.UsedBytes == 0 {
		t.Fatalf("expected non-zero used bytes after a write")
	}
	if usage.QuotaBytes != 1<<20 {
		t.Fatalf("expected configured quota, got %d", usage.QuotaBytes)
	}
}

func TestTieredUsageZeroFilledWithoutTiers(t *testing.T) {
	backend := NewTiered(Config{Logger: testLogger()})

	usage := backend.Usage(context.Background())
	if usage.UsedBytes != 0 || usage.QuotaBytes != 0 {
		t.Fatalf("expected zero-filled usage, got %+v", usage)
	}
}

func TestTieredRequestDurable(t *testing.T) {
	backend := newTestTiered(t, newTestSQLiteTier(t, 0), nil)

	if !backend.RequestDurable(context.Background()) {
		t.Fatalf("expected durable grant with a live sqlite tier")
	}

	memOnly := newTestTiered(t, nil, nil)
	if memOnly.RequestDurable(context.Background()) {
		t.Fatalf("expected no durable grant without a sqlite tier")
	}
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestSQLiteTierSaveLoad(t *testing.T) {
	tier := newTestSQLiteTier(t, 0)
	ctx := context.Background()

	if err := tier.Save(ctx, "state", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := tier.Load(ctx, "state")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got) != `{"version":1}` {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestSQLiteTierSaveOverwrites(t *testing.T) {
	tier := newTestSQLiteTier(t, 0)
	ctx := context.Background()

	_ = tier.Save(ctx, "k", []byte("first"))
	if err := tier.Save(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := tier.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected second, got %s", got)
	}
}

func TestSQLiteTierRefusesOversizedValue(t *testing.T) {
	tier := newTestSQLiteTier(t, 16)
	ctx := context.Background()

	err := tier.Save(ctx, "big", bytes.Repeat([]byte("x"), 17))
	if !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}

	if err := tier.Save(ctx, "small", bytes.Repeat([]byte("x"), 16)); err != nil {
		t.Fatalf("expected at-limit value to save, got %v", err)
	}
}

func TestSQLiteTierLoadMissing(t *testing.T) {
	tier := newTestSQLiteTier(t, 0)

	if _, err := tier.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteTierRemoveAndClear(t *testing.T) {
	tier := newTestSQLiteTier(t, 0)
	ctx := context.Background()

	_ = tier.Save(ctx, "a", []byte("1"))
	_ = tier.Save(ctx, "b", []byte("2"))

	if err := tier.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := tier.Load(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected removed key gone, got %v", err)
	}

	if err := tier.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := tier.Load(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cleared key gone, got %v", err)
	}
}

func TestSQLiteTierSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/reopen.db"

	tier, err := OpenSQLiteTier(path, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := tier.Save(context.Background(), "k", []byte("persisted")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := tier.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := OpenSQLiteTier(path, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background(), "k")
	if err != nil {
		t.Fatalf("load after reopen failed: %v", err)
	}
	if string(got) != "persisted" {
		t.Fatalf("expected persisted, got %s", got)
	}
}

func TestSQLiteTierDurable(t *testing.T) {
	tier := newTestSQLiteTier(t, 0)

	if !tier.Durable(context.Background()) {
		t.Fatalf("expected WAL-mode tier to report durable")
	}
}

func TestSQLiteTierUnavailableWhenNil(t *testing.T) {
	var tier *SQLiteTier
	if tier.Available() {
		t.Fatalf("expected nil tier to be unavailable")
	}
}

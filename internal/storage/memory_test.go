package storage

import (
	"context"
	"testing"
)

func TestMemoryTierSaveLoad(t *testing.T) {
	mem := NewMemoryTier()
	ctx := context.Background()

	if err := mem.Save(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := mem.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %s", got)
	}
}

func TestMemoryTierLoadMissing(t *testing.T) {
	mem := NewMemoryTier()

	if _, err := mem.Load(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryTierCopiesValues(t *testing.T) {
	mem := NewMemoryTier()
	ctx := context.Background()

	value := []byte("original")
	if err := mem.Save(ctx, "k", value); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	value[0] = 'X'

	got, err := mem.Load(ctx, "k")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("expected stored copy untouched, got %s", got)
	}
}

func TestMemoryTierRemoveAndClear(t *testing.T) {
	mem := NewMemoryTier()
	ctx := context.Background()

	_ = mem.Save(ctx, "a", []byte("1"))
	_ = mem.Save(ctx, "b", []byte("2"))

	if err := mem.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := mem.Load(ctx, "a"); err != ErrNotFound {
		t.Fatalf("expected removed key to be gone, got %v", err)
	}

	if err := mem.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if mem.Len() != 0 {
		t.Fatalf("expected empty tier after clear, got %d keys", mem.Len())
	}
}

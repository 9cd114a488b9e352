package storage

import (
	"context"
	"sync"
)

// MemoryTier is the in-process cache tier. It is the first tier tried
// on every read and write, acts as a read-through cache for the durable
// tiers, and is the ultimate fallback when no durable tier is usable.
// It never fails.
type MemoryTier struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryTier creates an empty memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{
		values: make(map[string][]byte),
	}
}

// Name implements Tier.
func (m *MemoryTier) Name() string { return "memory" }

// Available implements Tier. The memory tier is always available.
func (m *MemoryTier) Available() bool { return true }

// Save stores a copy of value under key.
func (m *MemoryTier) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(value))
	copy(buf, value)
	m.values[key] = buf
	return nil
}

// Load returns a copy of the value stored under key.
func (m *MemoryTier) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, nil
}

// Remove deletes the key.
func (m *MemoryTier) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Clear drops all keys.
func (m *MemoryTier) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string][]byte)
	return nil
}

// Len reports how many keys the tier holds.
func (m *MemoryTier) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

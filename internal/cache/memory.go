package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryEntries bounds the in-process cache. Webhook event IDs are small,
// so eviction before TTL expiry only risks reprocessing an old event,
// which the lifecycle handlers already tolerate.
const memoryEntries = 10_000

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryProvider is an in-process LRU cache for single-instance
// deployments. Entries expire lazily on read.
type MemoryProvider struct {
	entries *lru.Cache[string, memoryEntry]
}

func NewMemoryProvider() (*MemoryProvider, error) {
	entries, err := lru.New[string, memoryEntry](memoryEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{entries: entries}, nil
}

func (m *MemoryProvider) Get(ctx context.Context, key string) (string, error) {
	_ = ctx
	entry, ok := m.entries.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		m.entries.Remove(key)
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (m *MemoryProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	_ = ctx
	m.entries.Add(key, memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (m *MemoryProvider) Delete(ctx context.Context, key string) error {
	_ = ctx
	m.entries.Remove(key)
	return nil
}

func (m *MemoryProvider) Close() error {
	return nil
}

package identity

import (
	"context"
	"sync"
	"time"
)

// memoryCache is the fallback when no Redis endpoint is configured.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[uint64]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	details   Details
	expiresAt time.Time
}

func NewMemoryCache() Cache {
	return &memoryCache{
		entries: make(map[uint64]memoryEntry),
		now:     time.Now,
	}
}

func (c *memoryCache) Get(_ context.Context, id uint64) (Details, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return Details{}, false
	}
	return entry.details, true
}

func (c *memoryCache) Set(_ context.Context, d Details) {
	c.mu.Lock()
	c.entries[d.ID] = memoryEntry{details: d, expiresAt: c.now().Add(cacheTTL)}
	c.mu.Unlock()
}

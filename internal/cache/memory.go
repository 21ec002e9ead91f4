package cache

import (
	"context"
	"sync"
	"time"

	"shipstream/internal/port"
)

type memoryEntry struct {
	mapping   port.CachedMapping
	expiresAt time.Time
}

// MemoryCache is an in-process TTL map implementing port.MappingCache.
// Expiry is checked at read time; there is no background eviction.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory mapping cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryCacheWithClock creates a cache with an injectable clock (for tests).
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (c *MemoryCache) Get(_ context.Context, header string) (*port.CachedMapping, bool) {
	c.mu.RLock()
	entry, ok := c.entries[header]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		// Stale entry; the next Set overwrites it.
		return nil, false
	}
	mapping := entry.mapping
	return &mapping, true
}

func (c *MemoryCache) Set(_ context.Context, header string, mapping port.CachedMapping, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[header] = memoryEntry{
		mapping:   mapping,
		expiresAt: c.now().Add(ttl),
	}
}

// Len returns the number of stored entries, including expired ones.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

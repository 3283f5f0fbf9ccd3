package snapshot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry holds an indexed snapshot and when it was loaded.
type cacheEntry struct {
	index *Index
	built time.Time
}

// Cache reuses loaded snapshots for a fixed TTL.
// Concurrent misses for the same name share one load.
type Cache struct {
	provider Provider
	ttl      time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	sf      singleflight.Group
}

// NewCache wraps provider. A zero ttl disables caching.
func NewCache(provider Provider, ttl time.Duration) *Cache {
	return &Cache{
		provider: provider,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
}

// Provider returns the wrapped provider.
func (c *Cache) Provider() Provider {
	return c.provider
}

func (c *Cache) expired(e *cacheEntry) bool {
	if c.ttl == 0 {
		return true
	}
	return time.Since(e.built) > c.ttl
}

func (c *Cache) lookup(name string) (*Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.index, true
}

// Get returns the indexed snapshot, loading it on a miss or after expiry.
func (c *Cache) Get(ctx context.Context, name string) (*Index, error) {
	if idx, ok := c.lookup(name); ok {
		return idx, nil
	}

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		if idx, ok := c.lookup(name); ok {
			return idx, nil
		}

		s, err := c.provider.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		idx := NewIndex(s)

		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[name] = &cacheEntry{index: idx, built: time.Now()}
			c.mu.Unlock()
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Index), nil
}

// Invalidate drops the cached copy of name.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

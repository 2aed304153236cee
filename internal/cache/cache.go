// Package cache provides the process-lifetime in-memory cache used for
// network responses that must be fetched at most once per process.
// It uses patrickmn/go-cache for storage.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps go-cache with an init-once loader.
type Cache struct {
	store *gocache.Cache
	mu    sync.Mutex
}

// New creates a new cache with the given TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// NewProcess creates a cache whose entries never expire.
func NewProcess() *Cache {
	return New(gocache.NoExpiration, 0)
}

// Delete drops key so the next Load fetches it again.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(key)
}

// Load returns the value stored under key, calling load to populate it when
// absent. Concurrent callers for a missing key wait for a single load.
// Errors are returned and not cached.
func (c *Cache) Load(key string, load func() (any, error)) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return nil, err
	}
	c.store.Set(key, v, gocache.DefaultExpiration)
	return v, nil
}

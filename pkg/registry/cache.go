package registry

import (
	"sync"
)

// Cache lazily loads a registry once and shares it. Concurrent first callers
// trigger a single load; a failed load is not remembered.
type Cache struct {
	mu     sync.RWMutex
	loaded bool
	reg    *Registry
	load   LoaderFunc
}

// NewCache creates a cache around a loader.
func NewCache(load LoaderFunc) *Cache {
	return &Cache{load: load}
}

// NewStaticCache creates an already-populated cache.
func NewStaticCache(reg *Registry) *Cache {
	return &Cache{loaded: true, reg: reg}
}

// Get returns the registry, loading it on first use.
func (c *Cache) Get() (*Registry, error) {
	c.mu.RLock()
	if c.loaded {
		reg := c.reg
		c.mu.RUnlock()
		return reg, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.reg, nil
	}

	reg, err := c.load()
	if err != nil {
		return nil, err
	}
	c.reg = reg
	c.loaded = true
	return reg, nil
}

var defaultCache = NewCache(EmbeddedLoader())

// Default returns the process-wide registry cache backed by the embedded file.
func Default() *Cache {
	return defaultCache
}

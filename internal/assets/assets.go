// Package assets shares loaded model assets between instances.
package assets

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/logger"
)

// LoadFunc reads one asset. On failure it returns an empty, non-nil asset
// alongside the error.
type LoadFunc func(path string) (*model.Asset, error)

// Library loads each asset path once. Assets are immutable after loading,
// so every instance created from a library entry shares it.
type Library struct {
	load  LoadFunc
	cache *Cache
	log   *zap.Logger
}

// NewLibrary creates a library that reads assets with load.
func NewLibrary(load LoadFunc) *Library {
	return &Library{
		load:  load,
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// Load returns the asset at path, reading it on first use. A failed load
// is not cached and yields an empty asset plus the error.
func (l *Library) Load(path string) (*model.Asset, error) {
	if a, ok := l.cache.Get(path); ok {
		return a, nil
	}

	a, err := l.load(path)
	if err != nil {
		l.log.Warn("asset load failed", zap.String("path", path), zap.Error(err))
		if a == nil {
			a = &model.Asset{}
		}
		return a, err
	}
	l.cache.Set(path, a)
	return a, nil
}

// Instance loads path and returns a new instance of it.
func (l *Library) Instance(path string) (*model.Instance, error) {
	a, err := l.Load(path)
	return model.NewInstance(a), err
}

// Cache returns the underlying cache, for stats.
func (l *Library) Cache() *Cache { return l.cache }

// Cache is a concurrency-safe map of loaded assets.
type Cache struct {
	data map[string]*model.Asset
	mu   sync.RWMutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*model.Asset),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*model.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return a, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, a *model.Asset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = a
}

// Len returns the number of cached assets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear drops every cached asset.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*model.Asset)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

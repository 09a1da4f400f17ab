package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CostCache memoizes arrangement costs. It is safe for concurrent use.
type CostCache struct {
	cache     *lru.Cache[CostKey, float64]
	config    *CacheConfig
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewCostCache creates a new LRU cost cache
func NewCostCache(config *CacheConfig) (*CostCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &CostCache{config: config}
	cache, err := lru.NewWithEvict[CostKey, float64](config.MaxSize, func(CostKey, float64) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache

	return c, nil
}

// Get retrieves a cost from the cache
func (c *CostCache) Get(key CostKey) (float64, bool) {
	cost, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return 0, false
	}
	c.hits.Add(1)
	return cost, true
}

// Add stores a cost, evicting the least recently used entry when full
func (c *CostCache) Add(key CostKey, cost float64) {
	c.cache.Add(key, cost)
}

// Purge removes all entries; statistics are kept
func (c *CostCache) Purge() {
	c.cache.Purge()
}

// Len returns the number of items in the cache
func (c *CostCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics
func (c *CostCache) Stats() CacheStats {
	stats := CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Size:      c.cache.Len(),
		MaxSize:   c.config.MaxSize,
		Evictions: c.evictions.Load(),
	}
	stats.CalculateHitRate()
	return stats
}

package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ValueCache is a bounded, process-wide memo of indicator values keyed by
// execution. Chromosome clones that share an execution result find the value
// here even though their own memo is empty.
type ValueCache struct {
	cache     *lru.Cache[Key, float64]
	maxSize   int
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewValueCache creates a new LRU value cache
func NewValueCache(maxSize int) (*ValueCache, error) {
	c := &ValueCache{maxSize: maxSize}
	inner, err := lru.NewWithEvict[Key, float64](maxSize, func(Key, float64) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = inner
	return c, nil
}

// Get retrieves a value from the cache
func (c *ValueCache) Get(key Key) (float64, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return 0, false
	}
	c.hits.Add(1)
	return v, true
}

// Set stores a value in the cache
func (c *ValueCache) Set(key Key, value float64) {
	c.cache.Add(key, value)
}

// Clear removes all values from the cache
func (c *ValueCache) Clear() {
	c.cache.Purge()
}

// Len returns the number of items in the cache
func (c *ValueCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics
func (c *ValueCache) Stats() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Size:      c.cache.Len(),
		MaxSize:   c.maxSize,
		Evictions: c.evictions.Load(),
	}
	s.CalculateHitRate()
	return s
}

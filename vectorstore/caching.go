package vectorstore

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/blast/core"
)

// Compile-time check to ensure Caching satisfies Store.
var _ Store = (*Caching)(nil)

// Caching wraps a Store and adds an LRU read cache.
//
// The in-memory store never needs one, but a Store backed by disk, a
// quantized codec or a remote service benefits: index maintenance re-reads
// the same bucket-local vectors repeatedly. Vectors are immutable, so cached
// entries never need invalidation.
type Caching struct {
	inner Store
	cache *lru.Cache[core.VectorID, []float32]

	hits   uint64
	misses uint64
}

// NewCaching creates a caching wrapper holding at most size vectors.
// size defaults to 1024 if <= 0.
func NewCaching(inner Store, size int) *Caching {
	if size <= 0 {
		size = 1024
	}
	cache, _ := lru.New[core.VectorID, []float32](size)
	return &Caching{
		inner: inner,
		cache: cache,
	}
}

// Dimension returns the fixed vector dimensionality of the inner store.
func (c *Caching) Dimension() int {
	return c.inner.Dimension()
}

// GetVector returns the vector for id, serving repeated reads from the cache.
func (c *Caching) GetVector(id core.VectorID) ([]float32, bool) {
	if v, ok := c.cache.Get(id); ok {
		c.hits++
		return v, true
	}
	v, ok := c.inner.GetVector(id)
	if !ok {
		return nil, false
	}
	c.misses++
	c.cache.Add(id, v)
	return v, true
}

// CacheStats reports cache hits and misses since creation.
func (c *Caching) CacheStats() (hits, misses uint64) {
	return c.hits, c.misses
}

// Package viewcache keeps rendered listing views in memory, keyed by the
// logical path they were rendered for.
package viewcache

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// Invalidator marks the cached view for a path as stale.
type Invalidator interface {
	Invalidate(path string)
}

type entry struct {
	gen  uint64
	body []byte
}

// Cache is a bounded LRU of rendered views. A render is stored only if no
// invalidation of its path happened since the render began.
type Cache struct {
	mu   sync.Mutex
	lru  *lru.Cache
	gens map[string]uint64
}

// New returns a cache holding at most maxEntries views. Zero means no limit.
func New(maxEntries int) *Cache {
	return &Cache{
		lru:  lru.New(maxEntries),
		gens: make(map[string]uint64),
	}
}

// Get returns the cached view and true on a hit. On a miss it returns the
// generation to pass to Fill once the view is rendered.
func (c *Cache) Get(path string) ([]byte, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.gens[path]
	if v, ok := c.lru.Get(path); ok {
		e := v.(entry)
		if e.gen == gen {
			return e.body, gen, true
		}
		c.lru.Remove(path)
	}
	return nil, gen, false
}

// Fill stores a view rendered at generation gen. It is dropped when the path
// was invalidated in the meantime.
func (c *Cache) Fill(path string, gen uint64, body []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[path] != gen {
		return false
	}
	c.lru.Add(path, entry{gen: gen, body: body})
	return true
}

// Invalidate drops the cached view for path. It is idempotent and never fails.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[path]++
	c.lru.Remove(path)
}

// Len is the number of cached views.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

package dedup

import "sync"

// DefaultCapacity is the hard cap on retained signatures.
const DefaultCapacity = 1000

// Cache is a bounded set of recently seen transaction signatures.
// Under "finalized" commitment the provider can deliver the same
// notification more than once; the cache makes processing exactly-once
// within its retention window. When the cache exceeds capacity the
// oldest half is evicted, never the newest.
type Cache struct {
	mu       sync.Mutex
	capacity int
	index    map[string]struct{}
	order    []string // insertion order, oldest first
}

// New creates a Cache. capacity <= 0 uses DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		index:    make(map[string]struct{}, capacity),
	}
}

// Seen reports whether the signature was already recorded, inserting it
// if not. Check and insert are a single atomic step so concurrent
// deliveries of the same signature cannot both pass.
func (c *Cache) Seen(signature string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[signature]; ok {
		return true
	}

	c.index[signature] = struct{}{}
	c.order = append(c.order, signature)

	if len(c.order) > c.capacity {
		c.evictLocked()
	}

	return false
}

// evictLocked drops the oldest entries down to half capacity.
func (c *Cache) evictLocked() {
	keep := c.capacity / 2
	cut := len(c.order) - keep

	for _, sig := range c.order[:cut] {
		delete(c.index, sig)
	}
	c.order = append(c.order[:0:0], c.order[cut:]...)
}

// Size returns the number of retained signatures.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

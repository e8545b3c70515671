package storage

import (
	"sync"
	"time"
)

// CacheSlot is one small time-stamped cache cell with its own TTL. The
// cached value is advisory: a stale read within one TTL window is safe,
// so callers treat it as read-then-write without further coordination.
type CacheSlot[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu  sync.Mutex
	val T
	at  time.Time
	set bool
}

// NewCacheSlot creates an empty slot with the given TTL.
func NewCacheSlot[T any](ttl time.Duration) *CacheSlot[T] {
	return &CacheSlot[T]{ttl: ttl, now: time.Now}
}

// Get returns the cached value if it is still fresh.
func (c *CacheSlot[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set || c.now().Sub(c.at) > c.ttl {
		var zero T
		return zero, false
	}
	return c.val, true
}

// Put stores v stamped now.
func (c *CacheSlot[T]) Put(v T) {
	c.mu.Lock()
	c.val, c.at, c.set = v, c.now(), true
	c.mu.Unlock()
}

// Invalidate drops the cached value.
func (c *CacheSlot[T]) Invalidate() {
	c.mu.Lock()
	c.set = false
	c.mu.Unlock()
}

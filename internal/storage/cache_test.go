package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSlotEmpty(t *testing.T) {
	c := NewCacheSlot[string](time.Minute)
	_, ok := c.Get()
	assert.False(t, ok)
}

func TestCacheSlotHit(t *testing.T) {
	c := NewCacheSlot[string](time.Minute)
	c.Put("value")
	v, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestCacheSlotExpiry(t *testing.T) {
	now := time.Now()
	c := NewCacheSlot[int](time.Second)
	c.now = func() time.Time { return now }

	c.Put(7)
	_, ok := c.Get()
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get()
	assert.False(t, ok, "value past its TTL must not be served")
}

func TestCacheSlotInvalidate(t *testing.T) {
	c := NewCacheSlot[int](time.Minute)
	c.Put(7)
	c.Invalidate()
	_, ok := c.Get()
	assert.False(t, ok)
}

// internal/cache/ttl.go
package cache

import (
	"sync"
	"time"
)

const minTTL = time.Second

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache memoizes expensive operation results in memory for the lifetime of
// the process. All access is serialized by a single mutex so concurrent
// read-check-write sequences never lose updates.
type TTLCache struct {
	mu    sync.Mutex
	store map[string]entry
	now   func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{
		store: make(map[string]entry),
		now:   time.Now,
	}
}

// NewTTLCacheWithClock injects a clock, used by tests to simulate expiry.
func NewTTLCacheWithClock(now func() time.Time) *TTLCache {
	return &TTLCache{
		store: make(map[string]entry),
		now:   now,
	}
}

// Get returns the cached value for key. An entry past its expiry counts as a
// miss and is evicted on the spot.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.store, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl, floored at one second.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl < minTTL {
		ttl = minTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Invalidate removes a single key.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// Clear drops every entry.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]entry)
}

// Len reports the number of live-or-stale entries currently held.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

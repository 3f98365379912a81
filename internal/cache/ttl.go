// Package cache provides a small time-expiring memo table.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL maps keys to values stamped with their insertion time. Expiry is checked
// on read; an expired entry is dropped and reported as a miss.
//
// Concurrent callers that miss on the same key may both compute and Set; the
// last write wins. Values are expected to be pure functions of their key.
type TTL[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   Clock
	items map[K]entry[V]
}

// NewTTL creates a cache that keeps entries for ttl. A nil clock uses time.Now.
// A non-positive ttl disables caching: every Get misses.
func NewTTL[K comparable, V any](ttl time.Duration, clock Clock) *TTL[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTL[K, V]{ttl: ttl, now: clock, items: make(map[K]entry[V])}
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.items, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time.
func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Len reports the number of stored entries, including ones not yet found expired.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TTL returns the configured expiry window.
func (c *TTL[K, V]) TTL() time.Duration { return c.ttl }

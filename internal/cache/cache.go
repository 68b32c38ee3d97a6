// Package cache provides a process-local key/value store with per-entry
// expiry, used to memoize permission decisions and other small lookups.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL applies when no explicit TTL is given.
	DefaultTTL = 5 * time.Minute
	// DefaultSweepInterval is how often the background sweeper evicts
	// entries nobody reads anymore.
	DefaultSweepInterval = 60 * time.Second
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.After(now)
}

// Cache is a TTL map safe for concurrent use. Expired entries are treated
// as absent on read and purged lazily; Sweep removes the rest. Writes on a
// key are last-write-wins. There is no size bound.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	defaultTTL time.Duration

	now func() time.Time
}

// New constructs a Cache. A non-positive defaultTTL falls back to DefaultTTL.
func New[V any](defaultTTL time.Duration) *Cache[V] {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache[V]{
		entries:    make(map[string]entry[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the unexpired value for key. An expired entry is purged and
// reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := c.entries[key]; ok && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key. A zero or negative ttl stores an entry
// that is already expired, so the next Get reports it absent.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes key and reports whether an entry was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()
	return ok
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// the number removed. Role changes use this to drop all cached decisions for
// one subject.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len reports the number of physically stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup evicts every expired entry and returns the number removed.
func (c *Cache[V]) Cleanup() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// GetOrSet returns the cached value for key, or invokes compute, stores the
// result and returns it. A zero ttl means the default TTL. Two concurrent
// misses may both invoke compute; the stored value is whichever write lands
// last, and no single-flight guarantee is made.
func (c *Cache[V]) GetOrSet(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	c.SetWithTTL(key, value, ttl)
	return value, nil
}

// GetMany returns only the keys found and unexpired.
func (c *Cache[V]) GetMany(keys []string) map[string]V {
	found := make(map[string]V, len(keys))
	for _, key := range keys {
		if value, ok := c.Get(key); ok {
			found[key] = value
		}
	}
	return found
}

// SetMany stores every entry with the same ttl. A non-positive ttl uses the
// default.
func (c *Cache[V]) SetMany(values map[string]V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	expiresAt := c.now().Add(ttl)
	c.mu.Lock()
	for key, value := range values {
		c.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	}
	c.mu.Unlock()
}

// Sweep runs Cleanup on every tick until the context is cancelled. A
// non-positive interval falls back to DefaultSweepInterval.
func (c *Cache[V]) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

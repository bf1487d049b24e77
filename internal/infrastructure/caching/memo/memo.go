// Package memo provides a general-purpose single-flight, TTL-based
// memoized fetch cache. Concurrent callers asking for the same key
// share one in-flight fetch; entries are evicted lazily on read. It is
// not analytics-specific: unlike the rest of the engine it surfaces
// fetch errors to its caller when no fallback producer is supplied.
package memo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/singleflight"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
)

type entry[V any] struct {
	data      V
	timestamp time.Time
	ttl       time.Duration
}

// Cache is a keyed single-flight memo cache. The zero value is not
// usable; construct with New.
type Cache[V any] struct {
	entries     map[string]entry[V]
	mu          sync.RWMutex
	group       singleflight.Group
	clock       quartz.Clock
	degradedTTL time.Duration
	logger      *logging.ChanneledLogger
}

// New creates a cache. degradedTTL is the short, fixed ttl applied to
// fallback-produced values after a fetch failure, preventing immediate
// retry storms against a failing dependency. A nil clock uses real time.
func New[V any](degradedTTL time.Duration, clock quartz.Clock, logger *logging.ChanneledLogger) *Cache[V] {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Cache[V]{
		entries:     make(map[string]entry[V]),
		clock:       clock,
		degradedTTL: degradedTTL,
		logger:      logger,
	}
}

// Get returns the cached value for key when fresh, coalesces onto an
// in-flight fetch when one exists, and otherwise invokes fetch. On
// fetch failure the fallback producer, when non-nil, supplies a value
// that is cached under the degraded ttl instead of the error
// propagating. Timeout semantics belong entirely to fetch and its ctx;
// the cache imposes none.
func (c *Cache[V]) Get(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (V, error), fallback func() V) (V, error) {
	if data, ok := c.lookup(key); ok {
		return data, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A caller that queued behind a completed flight may find the
		// entry already stored.
		if data, ok := c.lookup(key); ok {
			return data, nil
		}

		start := c.clock.Now()
		data, err := fetch(ctx)
		if err != nil {
			if fallback == nil {
				return nil, err
			}
			if c.logger != nil {
				c.logger.Cache().Warn("Fetch failed, caching fallback value",
					"key", key, "error", err.Error(), "degradedTtl", c.degradedTTL)
			}
			data = fallback()
			c.store(key, data, c.degradedTTL)
			return data, nil
		}

		c.store(key, data, ttl)
		if c.logger != nil {
			c.logger.LogCacheOperation("fetch", key, false, c.clock.Now().Sub(start))
		}
		return data, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Peek returns the cached value without triggering a fetch.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.lookup(key)
}

// Invalidate removes every key containing pattern as a substring, or
// clears the whole cache when pattern is empty.
func (c *Cache[V]) Invalidate(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		c.entries = make(map[string]entry[V])
		return
	}
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired or not. Entries
// are only reaped when read.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		var zero V
		return zero, false
	}
	if c.clock.Now().Sub(e.timestamp) >= e.ttl {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.timestamp.Equal(e.timestamp) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.data, true
}

func (c *Cache[V]) store(key string, data V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{data: data, timestamp: c.clock.Now(), ttl: ttl}
	c.mu.Unlock()
}

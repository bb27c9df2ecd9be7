package core

import (
	"context"
	"sync"
	"time"
)

const defaultQueryCacheTTL = 30 * time.Second

// QueryCache deduplicates identical in-flight requests and serves
// recently completed results, keyed by the logical query. Concurrent
// callers with the same key share one upstream call; errors are never
// cached, so the next caller retries.
type QueryCache[V any] struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry[V]
}

type cacheEntry[V any] struct {
	ready    chan struct{}
	value    V
	err      error
	storedAt time.Time
}

func NewQueryCache[V any](ttl time.Duration) *QueryCache[V] {
	if ttl <= 0 {
		ttl = defaultQueryCacheTTL
	}
	return &QueryCache[V]{
		ttl:     ttl,
		clock:   time.Now,
		entries: map[string]*cacheEntry[V]{},
	}
}

// Do returns the cached value for key, joins an in-flight fetch for
// key, or invokes fetch and stores the result.
func (c *QueryCache[V]) Do(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && !c.expired(entry) {
		c.mu.Unlock()
		select {
		case <-entry.ready:
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
		if entry.err == nil {
			return entry.value, nil
		}
		// Joined a fetch that failed. Evict the entry ourselves so the
		// retry below starts fresh even if the fetcher has not run its
		// own eviction yet.
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return c.Do(ctx, key, fetch)
	}
	entry := &cacheEntry[V]{ready: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	value, err := fetch(ctx)
	entry.value = value
	entry.err = err
	entry.storedAt = c.clock()
	close(entry.ready)

	if err != nil {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	return value, err
}

// Invalidate drops every cached entry. Used when the distribution
// selection changes and accumulated queries no longer apply.
func (c *QueryCache[V]) Invalidate() {
	c.mu.Lock()
	c.entries = map[string]*cacheEntry[V]{}
	c.mu.Unlock()
}

func (c *QueryCache[V]) expired(entry *cacheEntry[V]) bool {
	select {
	case <-entry.ready:
		return c.clock().Sub(entry.storedAt) > c.ttl
	default:
		// Still in flight; join it.
		return false
	}
}

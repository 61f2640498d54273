package scan

import (
	"context"
	"sync"
	"time"
)

// QueryKind classifies upstream queries by how fast the underlying
// fact moves; each kind gets its own TTL.
type QueryKind string

const (
	KindStatement       QueryKind = "statement"        // ratio/overview snapshot fields
	KindStatementSeries QueryKind = "statement-series" // year-indexed statement bundles
	KindOverview        QueryKind = "overview"         // scraped investor pages
	KindPrice           QueryKind = "price"            // latest price, bars
)

type cacheKey struct {
	provider string
	ticker   string
	kind     QueryKind
}

type cacheEntry struct {
	value    any
	cachedAt time.Time
}

// Cache is the freshness cache: time-bounded memoization keyed by
// (provider, ticker, query kind). Safe for concurrent workers; Flush
// invalidates everything process-wide.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	ttls    map[QueryKind]time.Duration
	now     func() time.Time
}

// NewCache creates a cache with per-kind TTLs. Kinds missing from
// ttls are never cached.
func NewCache(ttls map[QueryKind]time.Duration) *Cache {
	return &Cache{
		entries: make(map[cacheKey]cacheEntry),
		ttls:    ttls,
		now:     time.Now,
	}
}

// Flush drops every entry unconditionally. Invalidation is
// deliberately coarse: a manual refresh means "trust nothing".
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of live entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key cacheKey) (any, bool) {
	ttl, cacheable := c.ttls[key.kind]
	if !cacheable {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(entry.cachedAt.Add(ttl)) {
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) store(key cacheKey, value any) {
	if _, cacheable := c.ttls[key.kind]; !cacheable {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, cachedAt: c.now()}
	c.mu.Unlock()
}

// GetOrFetch returns the cached value for (provider, ticker, kind) if
// still fresh, otherwise calls fn and caches its result. Errors are
// never cached.
func GetOrFetch[T any](ctx context.Context, c *Cache, provider, ticker string, kind QueryKind, fn func(context.Context) (T, error)) (T, error) {
	key := cacheKey{provider: provider, ticker: ticker, kind: kind}

	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.store(key, value)
	return value, nil
}

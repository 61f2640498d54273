package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching on top of the Redis client.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper.
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a cached value into dest. Returns false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		// A failed cache write must not fail the caller
		return nil
	}

	data, _ := json.Marshal(value)
	return json.Unmarshal(data, dest)
}

// Predefined TTLs by data volatility.
const (
	TTLShort  = 1 * time.Minute  // latest prices
	TTLMedium = 10 * time.Minute // scraped overview pages
	TTLLong   = 1 * time.Hour    // universe lists
	TTLDaily  = 24 * time.Hour   // annual statements
)

// Common cache key generators.

func PriceKey(ticker string) string {
	return fmt.Sprintf("price:%s", ticker)
}

func StatementKey(ticker string, kind string) string {
	return fmt.Sprintf("statement:%s:%s", ticker, kind)
}

func OverviewKey(provider string, ticker string) string {
	return fmt.Sprintf("overview:%s:%s", provider, ticker)
}

func UniverseKey(exchange string) string {
	return fmt.Sprintf("universe:%s", exchange)
}

// UniverseStaleKey holds the last successfully fetched listing. Stored
// without expiry so a listing outage can fall back to it long after
// the fresh entry lapsed.
func UniverseStaleKey(exchange string) string {
	return fmt.Sprintf("universe:%s:last-good", exchange)
}

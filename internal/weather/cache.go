package weather

import (
	"context"
	"log"
	"sync"
	"time"
)

// CachedClient wraps a Client and serves repeated queries from memory for
// the configured TTL. Entries are keyed per units mode; failures are never
// cached.
type CachedClient struct {
	client Client
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// NewCachedClient creates a caching wrapper around a client.
// A ttl <= 0 disables caching.
func NewCachedClient(client Client, ttl time.Duration) *CachedClient {
	return &CachedClient{
		client:  client,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// FetchCurrent returns cached current conditions when fresh.
func (c *CachedClient) FetchCurrent(ctx context.Context, loc Location, units Units) (CurrentConditions, error) {
	key := "current|" + loc.Key() + "|" + string(units)
	if v, ok := c.lookup(key); ok {
		return v.(CurrentConditions), nil
	}

	cur, err := c.client.FetchCurrent(ctx, loc, units)
	if err != nil {
		return CurrentConditions{}, err
	}
	c.store(key, cur)
	return cur, nil
}

// FetchForecast returns a cached forecast when fresh.
func (c *CachedClient) FetchForecast(ctx context.Context, coords Coordinates, units Units) (Forecast, error) {
	key := "forecast|" + coords.String() + "|" + string(units)
	if v, ok := c.lookup(key); ok {
		return v.(Forecast), nil
	}

	f, err := c.client.FetchForecast(ctx, coords, units)
	if err != nil {
		return Forecast{}, err
	}
	c.store(key, f)
	return f, nil
}

// Stats returns cache hit and miss counts.
func (c *CachedClient) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Prune drops expired entries and returns how many were removed.
func (c *CachedClient) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *CachedClient) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.ttl > 0 && c.now().Sub(e.storedAt) < c.ttl {
		c.hits++
		log.Printf("DEBUG: cache hit for %s (age %s)", key, c.now().Sub(e.storedAt).Round(time.Second))
		return e.value, true
	}
	c.misses++
	return nil, false
}

func (c *CachedClient) store(key string, v any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: v, storedAt: c.now()}
	c.mu.Unlock()
}

var _ Client = (*CachedClient)(nil)

package cache

import (
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL applies when callers do not override the entry lifetime.
const DefaultTTL = 10 * time.Minute

// Cache memoizes expensive derivations under canonicalized keys. Expiry is
// lazy: entries are evicted on Get, no janitor goroutine runs. Concurrent
// writers to the same key race benignly; entries are idempotent derivations
// of the same inputs, so the last Set wins.
type Cache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// New builds a cache with the given default TTL (DefaultTTL when <= 0).
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// Cleanup interval 0 disables the background sweeper; expired entries
	// are dropped lazily on access.
	return &Cache{store: gocache.New(ttl, 0), ttl: ttl}
}

// Key canonicalizes any value into a cache key. Strings pass through; other
// values are JSON-serialized, with map keys emitted in sorted order, so two
// structurally equal inputs produce the same key regardless of insertion
// order.
func Key(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return string(encoded)
}

// Get returns the live entry for the canonicalized key, if any.
func (c *Cache) Get(rawKey any) (any, bool) {
	return c.store.Get(Key(rawKey))
}

// Set stores value under the canonicalized key with the default TTL.
func (c *Cache) Set(rawKey, value any) {
	c.store.Set(Key(rawKey), value, c.ttl)
}

// SetTTL stores value with an explicit lifetime.
func (c *Cache) SetTTL(rawKey, value any, ttl time.Duration) {
	c.store.Set(Key(rawKey), value, ttl)
}

// Delete removes the entry for the canonicalized key.
func (c *Cache) Delete(rawKey any) {
	c.store.Delete(Key(rawKey))
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.store.Flush()
}

package people

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL matches the typical lifetime of a morning briefing run
// plus retries.
const DefaultCacheTTL = 2 * time.Hour

// Cache holds resolution results per (name, domain) key with a TTL.
// Entries are replaced wholesale on refresh, never mutated in place, so
// readers can hold a returned slice without synchronization.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	candidates []ScoredCandidate
	storedAt   time.Time
}

// CacheOption customizes a Cache.
type CacheOption func(*Cache)

// WithCacheClock overrides the clock. Used in tests.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a cache with the given TTL. A non-positive TTL falls
// back to DefaultCacheTTL.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(name, domain string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(domain))
}

// Get returns the live entry for the key, if any. Expired entries are
// dropped on the way out.
func (c *Cache) Get(name, domain string) ([]ScoredCandidate, bool) {
	key := cacheKey(name, domain)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.mu.Lock()
		// Recheck under the write lock; a Put may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.now().Sub(cur.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.candidates, true
}

// Put stores the candidates under the key, overwriting any existing
// entry.
func (c *Cache) Put(name, domain string, candidates []ScoredCandidate) {
	key := cacheKey(name, domain)

	c.mu.Lock()
	c.entries[key] = cacheEntry{candidates: candidates, storedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

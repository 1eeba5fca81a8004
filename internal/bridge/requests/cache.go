package requests

import (
	"sync"
	"time"
)

const (
	defaultCacheTTL  = 5 * time.Second
	defaultCacheSize = 100
)

type cacheEntry struct {
	text    string
	expires time.Time
}

// responseCache is a bounded short-TTL cache keyed by operation+payload.
// The TTL is deliberately tiny: it collapses bursts of identical reads from
// concurrent workflows, not long-term state.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	max     int
}

func newResponseCache(ttl time.Duration, max int) *responseCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if max <= 0 {
		max = defaultCacheSize
	}
	return &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		max:     max,
	}
}

func (c *responseCache) get(key string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if now.After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.text, true
}

func (c *responseCache) put(key, text string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		c.evict(now)
	}
	c.entries[key] = cacheEntry{text: text, expires: now.Add(c.ttl)}
}

func (c *responseCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// evict drops expired entries, and if none were expired drops one arbitrary
// entry so the insert can proceed. Caller holds the lock.
func (c *responseCache) evict(now time.Time) {
	dropped := false
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			dropped = true
		}
	}
	if dropped {
		return
	}
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

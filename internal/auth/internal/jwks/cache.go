package jwks

import (
	"sync"
	"time"
)

type cacheEntry struct {
	key       any
	expiresAt time.Time
}

// Cache holds resolved keys by kid for a fixed TTL.
// It is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache whose entries expire ttl after being set.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the key stored under kid, or nil if absent or expired.
func (c *Cache) Get(kid string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[kid]
	if !ok || c.now().After(entry.expiresAt) {
		return nil
	}
	return entry.key
}

// Set stores key under kid.
func (c *Cache) Set(kid string, key any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[kid] = cacheEntry{key: key, expiresAt: c.now().Add(c.ttl)}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for kid, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, kid)
		}
	}
}

// Size returns the number of entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

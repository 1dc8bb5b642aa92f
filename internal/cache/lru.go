package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultSize is the LRU capacity used when none is configured.
const DefaultSize = 256

// LRUCache is a thread-safe LRU cache with per-entry expiry.
type LRUCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
	now     func() time.Time
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewLRUCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to DefaultSize.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	return &LRUCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// Get retrieves a value, or nil if absent or expired.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.remove(key)
		return nil, nil
	}

	// Move to end (most recently used)
	c.moveToEnd(key)
	return entry.value, nil
}

// Set adds a value, evicting the least recently used entry if full.
// A ttl <= 0 stores the value without expiry.
func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		c.moveToEnd(key)
		return nil
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	return nil
}

// Delete removes a value if present.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	return nil
}

// Close drops all entries.
func (c *LRUCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LRUCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *LRUCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

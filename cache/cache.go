// Package cache is a bounded in-memory cache for full-mode render responses.
// Rendering a page costs seconds of browser time; crawlers tend to re-request
// the same URLs in bursts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/molistry/rendertron/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  *models.SerializedResponse
	createdAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
}

// New creates a Cache holding at most maxEntries responses for up to ttl.
// A background goroutine evicts expired entries every 5 minutes.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the target URL, mobile flag, and output
// format. All three change the rendered bytes.
func Key(url string, mobile bool, format string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatBool(mobile)))
	h.Write([]byte("|"))
	h.Write([]byte(format))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response if it exists and has not expired.
func (c *Cache) Get(key string) (*models.SerializedResponse, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}
	return e.response, true
}

// Set stores a response. At capacity a random entry is evicted to make room
// (map iteration order is random in Go).
func (c *Cache) Set(key string, resp *models.SerializedResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  resp,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}

// Package cache keeps recent content responses in memory so repeated
// requests for the same page can skip the browser.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/use-agent/pagewalk/models"
)

const (
	sweepInterval = 5 * time.Minute
	entryTTL      = time.Hour
)

type stored struct {
	resp models.ContentResponse
	at   time.Time
}

// Cache is an in-memory, size-bounded response store. Safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]stored
	limit int
	stop  chan struct{}
}

// New returns a Cache holding at most limit responses. A background sweep
// drops entries older than an hour until Stop is called.
func New(limit int) *Cache {
	c := &Cache{
		items: make(map[string]stored, limit),
		limit: limit,
		stop:  make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Key derives a cache key from the request fields that change the output.
// Parts are length-prefixed so no two part lists share a key.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the response stored under key when it is at most maxAgeMs old.
// A non-positive maxAgeMs always misses.
func (c *Cache) Get(key string, maxAgeMs int) (models.ContentResponse, bool) {
	if maxAgeMs <= 0 {
		return models.ContentResponse{}, false
	}

	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Since(it.at) > time.Duration(maxAgeMs)*time.Millisecond {
		return models.ContentResponse{}, false
	}
	return it.resp, true
}

// Set stores resp under key. A full cache drops an arbitrary entry first.
func (c *Cache) Set(key string, resp models.ContentResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; !ok && len(c.items) >= c.limit {
		for k := range c.items {
			delete(c.items, k)
			break
		}
	}
	c.items[key] = stored{resp: resp, at: time.Now()}
}

// Len reports how many responses are stored.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the background sweep.
func (c *Cache) Stop() {
	close(c.stop)
}

func (c *Cache) evictBefore(cutoff time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, it := range c.items {
		if it.at.Before(cutoff) {
			delete(c.items, k)
		}
	}
}

func (c *Cache) sweep() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-t.C:
			c.evictBefore(now.Add(-entryTTL))
		}
	}
}

// ABOUTME: In-memory cache that wraps a markdown rendering function with sha256-keyed entries.
// ABOUTME: Supports TTL-based expiry, concurrent access, pruning, and manual clearing.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"html/template"
	"sync"
	"time"
)

// RenderFunc renders source text to HTML.
type RenderFunc func(ctx context.Context, src string) (template.HTML, error)

// pruneThreshold is the entry count above which Render drops expired entries.
const pruneThreshold = 256

type cacheEntry struct {
	html      template.HTML
	createdAt time.Time
}

// Cache memoizes a RenderFunc. Keys are the sha256 of the source; entries
// expire after the configured TTL. Errors are never cached.
type Cache struct {
	renderFn RenderFunc
	ttl      time.Duration
	entries  map[string]*cacheEntry
	mu       sync.RWMutex
}

// NewCache wraps renderFn. Cached entries expire after ttl.
func NewCache(renderFn RenderFunc, ttl time.Duration) *Cache {
	return &Cache{
		renderFn: renderFn,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
}

// Render returns the cached HTML for src when present and fresh, otherwise
// renders and stores it.
func (c *Cache) Render(ctx context.Context, src string) (template.HTML, error) {
	key := cacheKey(src)

	c.mu.RLock()
	if entry, ok := c.entries[key]; ok && time.Since(entry.createdAt) < c.ttl {
		html := entry.html
		c.mu.RUnlock()
		return html, nil
	}
	c.mu.RUnlock()

	html, err := c.renderFn(ctx, src)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{html: html, createdAt: time.Now()}
	if len(c.entries) > pruneThreshold {
		c.pruneLocked()
	}
	c.mu.Unlock()

	return html, nil
}

// Len returns the number of entries, including expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune drops expired entries and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked()
}

func (c *Cache) pruneLocked() int {
	removed := 0
	for k, e := range c.entries {
		if time.Since(e.createdAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func cacheKey(src string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(src)))
}

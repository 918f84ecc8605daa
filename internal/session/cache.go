package session

import (
	"sync"
	"time"

	"github.com/mj1618/accessbridge/internal/adapter"
	"github.com/mj1618/accessbridge/internal/model"
)

// cacheEntry holds a flattened tree with its timestamp.
type cacheEntry struct {
	nodes     []model.FlatNode
	timestamp time.Time
}

// treeCache is a TTL-based cache of flattened trees, keyed by window.
type treeCache struct {
	mu      sync.Mutex
	entries map[adapter.WindowID]cacheEntry
	ttl     time.Duration
}

// newTreeCache creates a new cache. A ttl of 0 disables caching.
func newTreeCache(ttl time.Duration) *treeCache {
	return &treeCache{
		entries: make(map[adapter.WindowID]cacheEntry),
		ttl:     ttl,
	}
}

// read returns the cached nodes if within TTL, otherwise calls load.
func (c *treeCache) read(id adapter.WindowID, load func() ([]model.FlatNode, error)) ([]model.FlatNode, error) {
	if c.ttl == 0 {
		return load()
	}

	c.mu.Lock()
	if entry, ok := c.entries[id]; ok && time.Since(entry.timestamp) < c.ttl {
		nodes := entry.nodes
		c.mu.Unlock()
		return nodes, nil
	}
	c.mu.Unlock()

	nodes, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = cacheEntry{nodes: nodes, timestamp: time.Now()}
	c.mu.Unlock()

	return nodes, nil
}

// invalidate removes the entry of one window.
func (c *treeCache) invalidate(id adapter.WindowID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// invalidateAll clears the entire cache.
func (c *treeCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[adapter.WindowID]cacheEntry)
}

package models

import "sync"

// ThumbnailCache stores generated thumbnails keyed by gallery item ID
type ThumbnailCache struct {
	cache map[string][]byte
	mu    sync.RWMutex
}

// NewThumbnailCache creates an empty cache
func NewThumbnailCache() *ThumbnailCache {
	return &ThumbnailCache{cache: make(map[string][]byte)}
}

// Get returns a cached thumbnail
func (c *ThumbnailCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.cache[key]
	return b, ok
}

// Put stores a thumbnail
func (c *ThumbnailCache) Put(key string, b []byte) {
	c.mu.Lock()
	c.cache[key] = b
	c.mu.Unlock()
}

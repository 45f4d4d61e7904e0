// Package memory provides an in-memory cache implementation.
// This is suitable for single-node deployments where Redis is not available.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/shopcore/internal/repository"
)

// Cache implements repository.Cache using in-memory storage.
// This is NOT suitable for distributed deployments.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]*cacheItem
	stopCh  chan struct{}
	stopped bool
}

// cacheItem represents a single cached item.
type cacheItem struct {
	value     []byte
	expiresAt time.Time
	noExpiry  bool
}

// isExpired checks if the item has expired.
func (i *cacheItem) isExpired() bool {
	if i.noExpiry {
		return false
	}
	return time.Now().After(i.expiresAt)
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	c := &Cache{
		items:  make(map[string]*cacheItem),
		stopCh: make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// cleanupLoop periodically removes expired items.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired items.
func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, item := range c.items {
		if item.isExpired() {
			delete(c.items, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stopped {
		close(c.stopCh)
		c.stopped = true
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.isExpired() {
		return nil, repository.ErrCacheMiss
	}

	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, nil
}

// Set stores a value with an optional TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	item := &cacheItem{value: stored}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	} else {
		item.noExpiry = true
	}

	c.items[key] = item
	return nil
}

// Delete removes a value by key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Exists checks if a key exists.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	return exists && !item.isExpired(), nil
}

// Ensure Cache implements repository.Cache.
var _ repository.Cache = (*Cache)(nil)

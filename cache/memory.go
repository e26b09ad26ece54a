package cache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process. It backs single-instance deployments and tests.
type MemoryCache struct {
	store *gocache.Cache
	mu    sync.Mutex
}

// NewMemoryCache creates an in-process cache with the given cleanup interval.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	val, ok := c.store.Get(key)
	if !ok {
		return "", nil
	}
	s, _ := val.(string)
	return s, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.store.Set(key, stringify(value), ttl(expiration))
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// DeleteAll removes every key matching a Redis style glob pattern.
func (c *MemoryCache) DeleteAll(_ context.Context, pattern string) error {
	for key := range c.store.Items() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if matched {
			c.store.Delete(key)
		}
	}
	return nil
}

func (c *MemoryCache) DeleteBatch(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.store.Delete(key)
	}
	return nil
}

func (c *MemoryCache) Lock(_ context.Context, key, value string, ttlDuration time.Duration) (bool, error) {
	if err := c.store.Add(key, value, ttl(ttlDuration)); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Unlock(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.store.Get(key)
	if !ok || current != value {
		return errors.New("lock release failed: not the lock owner")
	}
	c.store.Delete(key)
	return nil
}

func ttl(d time.Duration) time.Duration {
	if d <= 0 {
		return gocache.NoExpiration
	}
	return d
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

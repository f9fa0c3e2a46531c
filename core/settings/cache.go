package settings

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fetches the full settings list from storage.
type Loader func(ctx context.Context) ([]Setting, error)

// Cache is a read-through cache over the settings table. The storefront
// reads settings on every page render, so concurrent misses are collapsed
// into one query with singleflight and results are kept for a TTL. Writes
// call Invalidate.
type Cache struct {
	load Loader
	ttl  time.Duration
	sfg  singleflight.Group

	mu       sync.RWMutex
	values   map[string]string
	loadedAt time.Time
}

func NewCache(load Loader, ttl time.Duration) *Cache {
	return &Cache{load: load, ttl: ttl}
}

// Values returns the settings as a key/value map, loading them at most
// once per TTL window no matter how many requests arrive together.
func (c *Cache) Values(ctx context.Context) (map[string]string, error) {
	c.mu.RLock()
	if c.values != nil && time.Since(c.loadedAt) < c.ttl {
		vals := c.values
		c.mu.RUnlock()
		return vals, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sfg.Do("settings", func() (interface{}, error) {
		ss, err := c.load(ctx)
		if err != nil {
			return nil, err
		}

		vals := make(map[string]string, len(ss))
		for _, s := range ss {
			if s.Value.Valid {
				vals[s.Key] = s.Value.String
			} else {
				vals[s.Key] = ""
			}
		}

		c.mu.Lock()
		c.values = vals
		c.loadedAt = time.Now()
		c.mu.Unlock()

		return vals, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[string]string), nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.values = nil
	c.mu.Unlock()
}

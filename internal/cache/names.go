// Package cache keeps the player name index in memory between lookups.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fortuna/courtside/internal/store"
	"golang.org/x/sync/singleflight"
)

// PlayerSource is the store read path the cache sits in front of
type PlayerSource interface {
	PlayerNames(ctx context.Context) ([]string, error)
	GetPlayer(ctx context.Context, name string) (*store.PlayerStatRecord, error)
}

// NameCache serves PlayerNames from memory for ttl after each load. Record
// reads always go to the source.
type NameCache struct {
	source PlayerSource
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group

	mu      sync.RWMutex
	names   []string
	expires time.Time
}

// NewNameCache creates a name cache over source
func NewNameCache(source PlayerSource, ttl time.Duration) *NameCache {
	return &NameCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// PlayerNames returns the cached names, loading them once per ttl.
// Concurrent misses share one load. Failed loads are not cached.
func (c *NameCache) PlayerNames(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	if c.names != nil && c.now().Before(c.expires) {
		names := c.names
		c.mu.RUnlock()
		return names, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("names", func() (interface{}, error) {
		names, err := c.source.PlayerNames(ctx)
		if err != nil {
			return nil, err
		}
		if names == nil {
			names = []string{}
		}

		c.mu.Lock()
		c.names = names
		c.expires = c.now().Add(c.ttl)
		c.mu.Unlock()
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// GetPlayer reads through to the source
func (c *NameCache) GetPlayer(ctx context.Context, name string) (*store.PlayerStatRecord, error) {
	return c.source.GetPlayer(ctx, name)
}

// Invalidate drops the cached names
func (c *NameCache) Invalidate() {
	c.mu.Lock()
	c.names = nil
	c.expires = time.Time{}
	c.mu.Unlock()
}

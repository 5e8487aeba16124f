package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/platform"
)

// RootCache provides a TTL-based cache for the root listing. Listing walks
// every application on the bus, so repeated list/select calls share one
// result.
type RootCache struct {
	mu        sync.Mutex
	roots     []model.Root
	timestamp time.Time
	valid     bool
	ttl       time.Duration
}

// NewRootCache creates a new cache. A ttl of 0 disables caching.
func NewRootCache(ttl time.Duration) *RootCache {
	return &RootCache{ttl: ttl}
}

// Roots returns the cached listing if within TTL, otherwise lists fresh.
// force skips the cache.
func (c *RootCache) Roots(ctx context.Context, lister platform.Lister, force bool) ([]model.Root, error) {
	if lister == nil {
		return nil, fmt.Errorf("root listing not available on this platform")
	}
	if c.ttl > 0 && !force {
		c.mu.Lock()
		if c.valid && time.Since(c.timestamp) < c.ttl {
			roots := c.roots
			c.mu.Unlock()
			return roots, nil
		}
		c.mu.Unlock()
	}

	roots, err := lister.ListRoots(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.roots, c.timestamp, c.valid = roots, time.Now(), true
	c.mu.Unlock()
	return roots, nil
}

// Last returns the most recent listing regardless of age, so indexes handed
// out by list_roots stay stable until the next listing.
func (c *RootCache) Last() []model.Root {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roots
}

// Invalidate drops the cached listing.
func (c *RootCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

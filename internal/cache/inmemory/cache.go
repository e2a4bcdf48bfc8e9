// Package inmemory provides the in-process SignalSet cache. Entries are
// keyed by (user, window) with a TTL, and concurrent computations for the
// same key are collapsed: a second request arriving while the first is still
// extracting waits for that result instead of recomputing.
// Suitable for single-instance deployments; a shared deployment would swap
// in a networked cache behind the same interface.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dvloznov/finance-insights/internal/domain"
)

type cacheKey struct {
	userID string
	window domain.Window
}

type entry struct {
	signals   *domain.WindowSignals
	expiresAt time.Time
}

// Cache is a TTL cache for extracted window signals, safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]entry
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[cacheKey]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached signals for (userID, window), or miss.
func (c *Cache) Get(userID string, window domain.Window) (*domain.WindowSignals, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[cacheKey{userID, window}]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.signals, true
}

// Put stores signals for (userID, window) with the cache's TTL.
func (c *Cache) Put(userID string, window domain.Window, signals *domain.WindowSignals) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{userID, window}] = entry{
		signals:   signals,
		expiresAt: c.now().Add(c.ttl),
	}
}

// GetOrCompute returns cached signals or runs compute exactly once per key,
// even under concurrent callers. The computed result is cached on success.
func (c *Cache) GetOrCompute(ctx context.Context, userID string, window domain.Window, compute func(context.Context) (*domain.WindowSignals, error)) (*domain.WindowSignals, error) {
	if sig, ok := c.Get(userID, window); ok {
		return sig, nil
	}

	flightKey := fmt.Sprintf("%s:%d", userID, window)
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		// A concurrent caller may have populated the entry while we waited
		// for the flight slot.
		if sig, ok := c.Get(userID, window); ok {
			return sig, nil
		}
		sig, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(userID, window, sig)
		return sig, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.WindowSignals), nil
}

// Invalidate drops the entry for (userID, window), if any.
func (c *Cache) Invalidate(userID string, window domain.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{userID, window})
}

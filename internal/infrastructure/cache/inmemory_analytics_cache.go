package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
)

const defaultCleanupInterval = time.Minute

// entry is a cached snapshot with its expiry
type entry struct {
	value     *analytics.SalesAnalytics
	expiresAt time.Time
}

// InMemoryAnalyticsCache implements analytics.SnapshotCache with a map.
// It suits single-instance deployments and tests; state is not shared
// across processes.
type InMemoryAnalyticsCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryAnalyticsCache
type InMemoryOption func(*inMemoryOptions)

type inMemoryOptions struct {
	cleanupInterval time.Duration
	now             func() time.Time
}

// WithCleanupInterval sets how often expired entries are purged
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(o *inMemoryOptions) {
		o.cleanupInterval = d
	}
}

// WithClock overrides the time source used for expiry
func WithClock(now func() time.Time) InMemoryOption {
	return func(o *inMemoryOptions) {
		o.now = now
	}
}

// NewInMemoryAnalyticsCache creates the cache and starts its cleanup goroutine.
// Call Close to stop it.
func NewInMemoryAnalyticsCache(opts ...InMemoryOption) *InMemoryAnalyticsCache {
	o := inMemoryOptions{
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &InMemoryAnalyticsCache{
		entries:  make(map[string]entry),
		now:      o.now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(o.cleanupInterval)

	return c
}

// Get returns a copy of a fresh entry; expired entries are reported as misses
func (c *InMemoryAnalyticsCache) Get(ctx context.Context, key string) (*analytics.SalesAnalytics, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value.Clone(), true, nil
}

// Set stores a copy of value under key for ttl, replacing any previous entry
func (c *InMemoryAnalyticsCache) Set(ctx context.Context, key string, value *analytics.SalesAnalytics, ttl time.Duration) error {
	if value == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value.Clone(),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// InvalidatePrefix removes every entry whose key starts with prefix
func (c *InMemoryAnalyticsCache) InvalidatePrefix(ctx context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted int64
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryAnalyticsCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryAnalyticsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryAnalyticsCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

// purgeExpired drops entries past their expiry and returns how many were removed
func (c *InMemoryAnalyticsCache) purgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

var _ analytics.SnapshotCache = (*InMemoryAnalyticsCache)(nil)

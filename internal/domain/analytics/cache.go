package analytics

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultCacheNamespace prefixes every sales analytics cache key
	DefaultCacheNamespace = "analytics:sales"
	// DefaultCacheTTL is how long a cached snapshot stays fresh
	DefaultCacheTTL = 300 * time.Second

	unboundedSentinel = "all"
	cacheKeyTimeFmt   = time.RFC3339
)

// SnapshotCache stores SalesAnalytics snapshots with a time-to-live.
// Implementations must tolerate concurrent readers and writers; on a
// simultaneous miss the last write wins.
type SnapshotCache interface {
	// Get returns the cached snapshot and true on a fresh hit
	Get(ctx context.Context, key string) (*SalesAnalytics, bool, error)
	// Set stores the snapshot for ttl
	Set(ctx context.Context, key string, value *SalesAnalytics, ttl time.Duration) error
	// InvalidatePrefix deletes every entry whose key starts with prefix
	InvalidatePrefix(ctx context.Context, prefix string) (int64, error)
	// Close releases resources held by the cache
	Close() error
}

// CacheKey builds the key of a (scope, range) query under namespace.
// Absent bounds and an unrestricted store scope use the "all" sentinel.
func CacheKey(namespace string, scope TenantScope, r DateRange) string {
	return strings.Join([]string{
		namespace,
		scope.TenantID.String(),
		scope.storeKey(),
		formatBound(r.Start),
		formatBound(r.End),
	}, ":")
}

// NamespacePrefix returns the prefix matching every key of namespace
func NamespacePrefix(namespace string) string {
	return namespace + ":"
}

func formatBound(t *time.Time) string {
	if t == nil {
		return unboundedSentinel
	}
	return t.UTC().Format(cacheKeyTimeFmt)
}

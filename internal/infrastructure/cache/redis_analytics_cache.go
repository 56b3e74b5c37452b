package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultScanBatchSize = 100
	pingTimeout          = 5 * time.Second
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisAnalyticsCache implements analytics.SnapshotCache on Redis.
// Snapshots are stored as JSON with a native key expiry. Driver failures are
// wrapped in shared.ErrBackendUnavailable so callers can fail open.
type RedisAnalyticsCache struct {
	client     *redis.Client
	ownsClient bool
	logger     *zap.Logger
}

// RedisCacheOption configures a RedisAnalyticsCache
type RedisCacheOption func(*RedisAnalyticsCache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisCacheOption {
	return func(c *RedisAnalyticsCache) {
		c.logger = logger
	}
}

// NewRedisAnalyticsCache connects to Redis and verifies the connection
func NewRedisAnalyticsCache(cfg RedisConfig, opts ...RedisCacheOption) (*RedisAnalyticsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisAnalyticsCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisAnalyticsCacheWithClient wraps an existing client.
// The caller keeps ownership of the client and is responsible for closing it.
func NewRedisAnalyticsCacheWithClient(client *redis.Client, opts ...RedisCacheOption) *RedisAnalyticsCache {
	c := &RedisAnalyticsCache{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get loads and decodes a snapshot
func (c *RedisAnalyticsCache) Get(ctx context.Context, key string) (*analytics.SalesAnalytics, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, shared.ErrBackendUnavailable.WithCause(err)
	}

	var snapshot analytics.SalesAnalytics
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("Dropping corrupted analytics cache entry",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &snapshot, true, nil
}

// Set encodes and stores a snapshot with ttl
func (c *RedisAnalyticsCache) Set(ctx context.Context, key string, value *analytics.SalesAnalytics, ttl time.Duration) error {
	if value == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics snapshot: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return shared.ErrBackendUnavailable.WithCause(err)
	}
	return nil
}

// InvalidatePrefix deletes matching keys with SCAN so Redis is never blocked
// by a KEYS call.
func (c *RedisAnalyticsCache) InvalidatePrefix(ctx context.Context, prefix string) (int64, error) {
	var (
		cursor       uint64
		deletedCount int64
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", defaultScanBatchSize).Result()
		if err != nil {
			return deletedCount, shared.ErrBackendUnavailable.WithCause(err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deletedCount, shared.ErrBackendUnavailable.WithCause(err)
			}
			deletedCount += deleted
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug("Invalidated analytics cache entries",
		zap.String("prefix", prefix),
		zap.Int64("deleted", deletedCount))
	return deletedCount, nil
}

// Ping checks the connection
func (c *RedisAnalyticsCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return shared.ErrBackendUnavailable.WithCause(err)
	}
	return nil
}

// Close closes the client if this cache created it
func (c *RedisAnalyticsCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ analytics.SnapshotCache = (*RedisAnalyticsCache)(nil)

package cache

import (
	"fmt"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AnalyticsCacheFactory picks the snapshot cache backend from configuration
type AnalyticsCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption configures the factory
type FactoryOption func(*AnalyticsCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *AnalyticsCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Defaults to true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *AnalyticsCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewAnalyticsCacheFactory creates a factory for cfg
func NewAnalyticsCacheFactory(cfg config.RedisConfig, opts ...FactoryOption) *AnalyticsCacheFactory {
	f := &AnalyticsCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, and an
// in-memory cache otherwise.
func (f *AnalyticsCacheFactory) Create() (analytics.SnapshotCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory analytics cache")
		return NewInMemoryAnalyticsCache(), nil
	}

	c, err := NewRedisAnalyticsCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, WithCacheLogger(f.logger.Named("analytics_cache")))
	if err == nil {
		f.logger.Info("Using Redis analytics cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for analytics cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory analytics cache. "+
		"Cached snapshots will not be shared between instances.",
		zap.Error(err))
	return NewInMemoryAnalyticsCache(), nil
}

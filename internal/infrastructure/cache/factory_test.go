package cache

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/analytics/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAnalyticsCacheFactory_RedisDisabled(t *testing.T) {
	f := NewAnalyticsCacheFactory(config.RedisConfig{Enabled: false})

	c, err := f.Create()
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &InMemoryAnalyticsCache{}, c)
}

func TestAnalyticsCacheFactory_RedisAvailable(t *testing.T) {
	mr := miniredis.RunT(t)
	f := NewAnalyticsCacheFactory(config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mustPort(t, mr),
	})

	c, err := f.Create()
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &RedisAnalyticsCache{}, c)
}

func TestAnalyticsCacheFactory_FallsBackWhenUnreachable(t *testing.T) {
	core, recorded := observer.New(zapcore.WarnLevel)
	f := NewAnalyticsCacheFactory(
		config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
		WithLogger(zap.New(core)),
	)

	c, err := f.Create()
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &InMemoryAnalyticsCache{}, c)
	assert.Equal(t, 1, recorded.Len())
}

func TestAnalyticsCacheFactory_NoFallback(t *testing.T) {
	f := NewAnalyticsCacheFactory(
		config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
		WithInMemoryFallback(false),
	)

	_, err := f.Create()
	assert.Error(t, err)
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(mr.Port(), "%d", &port)
	require.NoError(t, err)
	return port
}

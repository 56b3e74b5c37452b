// Package scheduler runs periodic maintenance jobs for the analytics service.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DefaultSweepSchedule runs the sweep at midnight so date-window keys roll over
const DefaultSweepSchedule = "0 0 * * *"

const defaultSweepTimeout = 30 * time.Second

// CacheInvalidator drops cached analytics snapshots
type CacheInvalidator interface {
	InvalidateAnalyticsCache(ctx context.Context) (int64, error)
}

// CacheSweepConfig configures the cache sweep job
type CacheSweepConfig struct {
	Enabled  bool
	Schedule string // standard 5-field cron expression
	Timeout  time.Duration
	Location *time.Location
}

// CacheSweepScheduler periodically invalidates the analytics snapshot cache
type CacheSweepScheduler struct {
	scheduler   *gocron.Scheduler
	invalidator CacheInvalidator
	config      CacheSweepConfig
	logger      *zap.Logger

	mu            sync.Mutex
	started       bool
	lastSweepAt   time.Time
	lastRemoved   int64
	lastSweepErr  error
	sweepsRunning bool
}

// SweepStatus describes the most recent sweep
type SweepStatus struct {
	LastSweepAt time.Time
	LastRemoved int64
	LastError   error
	NextRun     time.Time
}

// NewCacheSweepScheduler creates a sweep scheduler. It does nothing until Start.
func NewCacheSweepScheduler(invalidator CacheInvalidator, cfg CacheSweepConfig, logger *zap.Logger) (*CacheSweepScheduler, error) {
	if invalidator == nil {
		return nil, fmt.Errorf("%w: invalidator is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.Schedule) == "" {
		cfg.Schedule = DefaultSweepSchedule
	}
	if len(strings.Fields(cfg.Schedule)) != 5 {
		return nil, fmt.Errorf("%w: schedule %q must have 5 fields", ErrInvalidConfig, cfg.Schedule)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSweepTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	s := gocron.NewScheduler(cfg.Location)
	s.SingletonModeAll()

	return &CacheSweepScheduler{
		scheduler:   s,
		invalidator: invalidator,
		config:      cfg,
		logger:      logger,
	}, nil
}

// Start registers the sweep job and runs the scheduler in the background.
// The scheduler stops when ctx is cancelled or Stop is called.
func (c *CacheSweepScheduler) Start(ctx context.Context) error {
	if !c.config.Enabled {
		c.logger.Info("Analytics cache sweep disabled by configuration")
		return nil
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	_, err := c.scheduler.Cron(c.config.Schedule).Do(func() {
		c.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule analytics cache sweep: %w", err)
	}

	c.scheduler.StartAsync()
	c.logger.Info("Analytics cache sweep scheduled", zap.String("cron", c.config.Schedule))

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

// Stop stops the scheduler. It is safe to call more than once.
func (c *CacheSweepScheduler) Stop() {
	if c.scheduler.IsRunning() {
		c.scheduler.Stop()
		c.logger.Info("Analytics cache sweep stopped")
	}
}

// RunNow performs one sweep immediately. Overlapping calls are skipped.
func (c *CacheSweepScheduler) RunNow(ctx context.Context) {
	c.mu.Lock()
	if c.sweepsRunning {
		c.mu.Unlock()
		c.logger.Warn("Analytics cache sweep already running")
		return
	}
	c.sweepsRunning = true
	c.mu.Unlock()

	sweepCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
	defer cancel()

	removed, err := c.invalidator.InvalidateAnalyticsCache(sweepCtx)

	c.mu.Lock()
	c.sweepsRunning = false
	c.lastSweepAt = time.Now()
	c.lastRemoved = removed
	c.lastSweepErr = err
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("Analytics cache sweep failed", zap.Error(err))
		return
	}
	c.logger.Info("Analytics cache sweep completed", zap.Int64("removed", removed))
}

// Status returns the outcome of the last sweep and the next scheduled run
func (c *CacheSweepScheduler) Status() SweepStatus {
	c.mu.Lock()
	status := SweepStatus{
		LastSweepAt: c.lastSweepAt,
		LastRemoved: c.lastRemoved,
		LastError:   c.lastSweepErr,
	}
	c.mu.Unlock()

	if _, next := c.scheduler.NextRun(); c.scheduler.IsRunning() {
		status.NextRun = next
	}
	return status
}

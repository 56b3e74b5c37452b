package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Cache outcomes recorded on the lookup counter
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeFallback = "fallback"
)

// AnalyticsMetrics records cache effectiveness and aggregation cost of the
// sales analytics pipeline.
type AnalyticsMetrics struct {
	logger *zap.Logger

	cacheLookups        *Counter
	aggregationDuration *Histogram
	aggregatedRecords   *Histogram
	invalidatedKeys     *Counter
}

// NewAnalyticsMetrics creates the analytics instruments on meter
func NewAnalyticsMetrics(meter metric.Meter, logger *zap.Logger) (*AnalyticsMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	am := &AnalyticsMetrics{logger: logger}

	var err error
	am.cacheLookups, err = NewCounter(meter,
		"erp_analytics_cache_lookups_total",
		"Analytics snapshot cache lookups by outcome",
		"{lookups}",
	)
	if err != nil {
		return nil, err
	}

	am.invalidatedKeys, err = NewCounter(meter,
		"erp_analytics_cache_invalidated_total",
		"Analytics snapshot cache entries removed by invalidation",
		"{keys}",
	)
	if err != nil {
		return nil, err
	}

	am.aggregationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "erp_analytics_aggregation_duration_seconds",
		Description: "Time spent fetching and aggregating sale records",
		Unit:        "s",
		Boundaries:  AggregationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	am.aggregatedRecords, err = NewHistogram(meter, HistogramOpts{
		Name:        "erp_analytics_aggregated_records",
		Description: "Number of sale records folded into one snapshot",
		Unit:        "{records}",
		Boundaries:  RecordCountBuckets,
	})
	if err != nil {
		return nil, err
	}

	return am, nil
}

// RecordCacheHit counts a snapshot served from cache
func (am *AnalyticsMetrics) RecordCacheHit(ctx context.Context) {
	am.cacheLookups.Inc(ctx, AttrOutcome.String(OutcomeHit))
}

// RecordCacheMiss counts a snapshot that had to be computed
func (am *AnalyticsMetrics) RecordCacheMiss(ctx context.Context) {
	am.cacheLookups.Inc(ctx, AttrOutcome.String(OutcomeMiss))
}

// RecordCacheFallback counts a cache backend failure that was treated as a miss
func (am *AnalyticsMetrics) RecordCacheFallback(ctx context.Context, operation string) {
	am.cacheLookups.Inc(ctx,
		AttrOutcome.String(OutcomeFallback),
		AttrOperation.String(operation),
	)
	am.logger.Debug("Analytics cache fallback recorded", zap.String("operation", operation))
}

// RecordAggregation records the cost of computing one snapshot
func (am *AnalyticsMetrics) RecordAggregation(ctx context.Context, d time.Duration, recordCount int) {
	am.aggregationDuration.RecordDuration(ctx, d)
	am.aggregatedRecords.Record(ctx, float64(recordCount))
}

// RecordInvalidation counts removed cache entries
func (am *AnalyticsMetrics) RecordInvalidation(ctx context.Context, removed int64) {
	am.invalidatedKeys.Add(ctx, removed)
}

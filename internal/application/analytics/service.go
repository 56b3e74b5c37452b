// Package analytics serves sales analytics snapshots, trends, insights and
// KPIs over a tenant's sale records.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/erp/analytics/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const spanService = "sales_analytics"

// Cache operations reported to Metrics on fallback
const (
	cacheOpGet        = "get"
	cacheOpSet        = "set"
	cacheOpInvalidate = "invalidate"
)

// Metrics receives cache and aggregation measurements.
// *telemetry.AnalyticsMetrics satisfies it.
type Metrics interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordCacheFallback(ctx context.Context, operation string)
	RecordAggregation(ctx context.Context, d time.Duration, recordCount int)
	RecordInvalidation(ctx context.Context, removed int64)
}

type nopMetrics struct{}

func (nopMetrics) RecordCacheHit(context.Context) {}
func (nopMetrics) RecordCacheMiss(context.Context) {}
func (nopMetrics) RecordCacheFallback(context.Context, string) {}
func (nopMetrics) RecordAggregation(context.Context, time.Duration, int) {}
func (nopMetrics) RecordInvalidation(context.Context, int64) {}

// SalesAnalyticsService computes sales analytics through a cache-aside
// snapshot cache. Cache failures never fail a request.
type SalesAnalyticsService struct {
	gateway   analytics.SaleRecordGateway
	cache     analytics.SnapshotCache
	publisher shared.EventPublisher
	logger    *zap.Logger
	metrics   Metrics
	tracer    trace.Tracer
	now       func() time.Time

	cacheTTL           time.Duration
	namespace          string
	averageOrderTarget float64
}

// Option configures a SalesAnalyticsService
type Option func(*SalesAnalyticsService)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *SalesAnalyticsService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for date windows and KPIs
func WithClock(now func() time.Time) Option {
	return func(s *SalesAnalyticsService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCacheTTL sets how long snapshots stay cached
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *SalesAnalyticsService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithNamespace sets the cache key namespace
func WithNamespace(namespace string) Option {
	return func(s *SalesAnalyticsService) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(s *SalesAnalyticsService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer used for service spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *SalesAnalyticsService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithAverageOrderTarget sets the target attached to the average order value KPI
func WithAverageOrderTarget(target float64) Option {
	return func(s *SalesAnalyticsService) {
		if target > 0 {
			s.averageOrderTarget = target
		}
	}
}

// WithEventPublisher sets the publisher used by RecordSale
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(s *SalesAnalyticsService) {
		s.publisher = publisher
	}
}

// NewSalesAnalyticsService creates a new sales analytics service.
// A nil cache disables caching.
func NewSalesAnalyticsService(gateway analytics.SaleRecordGateway, cache analytics.SnapshotCache, opts ...Option) *SalesAnalyticsService {
	s := &SalesAnalyticsService{
		gateway:            gateway,
		cache:              cache,
		logger:             zap.NewNop(),
		metrics:            nopMetrics{},
		tracer:             otel.Tracer(telemetry.TracerName),
		now:                time.Now,
		cacheTTL:           analytics.DefaultCacheTTL,
		namespace:          analytics.DefaultCacheNamespace,
		averageOrderTarget: analytics.DefaultAverageOrderTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSalesAnalytics returns the analytics snapshot of scope over dateRange
func (s *SalesAnalyticsService) GetSalesAnalytics(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) (*analytics.SalesAnalytics, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.tracer, spanService, "get",
		telemetry.SpanAttrTenantID, scope.TenantID.String(),
		telemetry.SpanAttrStoreCount, len(scope.AllowedStoreIDs),
	)
	defer span.End()

	if err := dateRange.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if scope.IsEmpty() {
		telemetry.SetOK(span)
		return analytics.EmptySalesAnalytics(), nil
	}

	key := analytics.CacheKey(s.namespace, scope, dateRange)
	if cached, ok := s.lookup(ctx, key); ok {
		telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
		telemetry.SetOK(span)
		return cached, nil
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)

	start := time.Now()
	records, err := s.fetch(ctx, scope, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result := analytics.Aggregate(records)
	s.metrics.RecordAggregation(ctx, time.Since(start), len(records))
	telemetry.SetAttributes(span, telemetry.SpanAttrRecordCount, len(records))

	s.store(ctx, key, result)
	telemetry.SetOK(span)
	return result, nil
}

// GetTodaysAnalytics covers midnight UTC through the end of the day
func (s *SalesAnalyticsService) GetTodaysAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.GetSalesAnalytics(ctx, scope, analytics.NewDateRange(start, endOfDay(now)))
}

// GetMonthToDateAnalytics covers the first of the current month through today
func (s *SalesAnalyticsService) GetMonthToDateAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.GetSalesAnalytics(ctx, scope, analytics.NewDateRange(start, endOfDay(now)))
}

// GetYearToDateAnalytics covers January 1st through today
func (s *SalesAnalyticsService) GetYearToDateAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.GetSalesAnalytics(ctx, scope, analytics.NewDateRange(start, endOfDay(now)))
}

// endOfDay pins the window end to the last instant of t's UTC day, so every
// call on the same day shares one cache key.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// GenerateInsights runs the insight heuristics over the records of scope
func (s *SalesAnalyticsService) GenerateInsights(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.Insight, error) {
	records, err := s.scopedRecords(ctx, scope, dateRange)
	if err != nil {
		return nil, err
	}
	return analytics.GenerateInsights(records), nil
}

// CalculateKPIs computes the KPI set over the records of scope
func (s *SalesAnalyticsService) CalculateKPIs(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.PerformanceMetric, error) {
	records, err := s.scopedRecords(ctx, scope, dateRange)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateKPIs(records, s.now(), s.averageOrderTarget), nil
}

// CalculateSalesTrends returns the month over month revenue series of scope
func (s *SalesAnalyticsService) CalculateSalesTrends(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.SalesTrendPoint, error) {
	records, err := s.scopedRecords(ctx, scope, dateRange)
	if err != nil {
		return nil, err
	}
	return analytics.CalculateSalesTrends(records), nil
}

// InvalidateAnalyticsCache drops every cached snapshot of the namespace
func (s *SalesAnalyticsService) InvalidateAnalyticsCache(ctx context.Context) (int64, error) {
	return s.invalidate(ctx, analytics.NamespacePrefix(s.namespace))
}

// InvalidateTenantCache drops the cached snapshots of one tenant
func (s *SalesAnalyticsService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.invalidate(ctx, analytics.NamespacePrefix(s.namespace)+tenantID.String()+":")
}

// RecordSale stores a new sale record and publishes SaleRecordedEvent
func (s *SalesAnalyticsService) RecordSale(ctx context.Context, record *analytics.SaleRecord) error {
	if record == nil {
		return shared.ErrInvalidInput.WithMessage("Sale record is required")
	}
	if record.TenantID == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Tenant is required")
	}
	occurredAt := record.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}
	validated, err := analytics.NewSaleRecord(record.TenantID, record.Category, record.Amount, occurredAt)
	if err != nil {
		return err
	}
	if record.ID != uuid.Nil {
		validated.ID = record.ID
	}
	validated.StoreID = record.StoreID
	validated.EmployeeID = record.EmployeeID
	validated.CustomerID = record.CustomerID

	if err := s.gateway.Save(ctx, validated); err != nil {
		return backendError(err)
	}
	*record = *validated

	s.logger.Info("Sale recorded",
		zap.String("sale_id", record.ID.String()),
		zap.String("tenant_id", record.TenantID.String()),
		zap.String("category", record.Category),
	)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, analytics.NewSaleRecordedEvent(record)); err != nil {
		s.logger.Warn("Failed to publish sale recorded event",
			zap.String("sale_id", record.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *SalesAnalyticsService) scopedRecords(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.SaleRecord, error) {
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}
	if scope.IsEmpty() {
		return []analytics.SaleRecord{}, nil
	}
	return s.fetch(ctx, scope, dateRange)
}

func (s *SalesAnalyticsService) fetch(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.SaleRecord, error) {
	records, err := s.gateway.FetchSaleRecords(ctx, analytics.SaleFilter{Scope: scope, Range: dateRange})
	if err != nil {
		s.logger.Error("Failed to fetch sale records",
			zap.String("tenant_id", scope.TenantID.String()),
			zap.Error(err),
		)
		return nil, backendError(err)
	}
	return records, nil
}

func (s *SalesAnalyticsService) lookup(ctx context.Context, key string) (*analytics.SalesAnalytics, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Analytics cache read failed, computing directly",
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.RecordCacheFallback(ctx, cacheOpGet)
		return nil, false
	}
	if !ok {
		s.metrics.RecordCacheMiss(ctx)
		return nil, false
	}
	s.metrics.RecordCacheHit(ctx)
	return cached, true
}

func (s *SalesAnalyticsService) store(ctx context.Context, key string, value *analytics.SalesAnalytics) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Analytics cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.RecordCacheFallback(ctx, cacheOpSet)
	}
}

func (s *SalesAnalyticsService) invalidate(ctx context.Context, prefix string) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	removed, err := s.cache.InvalidatePrefix(ctx, prefix)
	if err != nil {
		s.logger.Error("Analytics cache invalidation failed",
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		s.metrics.RecordCacheFallback(ctx, cacheOpInvalidate)
		return 0, shared.ErrBackendUnavailable.WithCause(err)
	}
	s.metrics.RecordInvalidation(ctx, removed)
	s.logger.Info("Analytics cache invalidated",
		zap.String("prefix", prefix),
		zap.Int64("removed", removed),
	)
	return removed, nil
}

// backendError keeps domain errors and reports anything else as BackendUnavailable
func backendError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.ErrBackendUnavailable.WithCause(err)
}

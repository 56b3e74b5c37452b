// Package account scores the health of commercial accounts and derives the
// notifications account managers act on.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/analytics/internal/domain/account"
	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/erp/analytics/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const spanService = "account_health"

// AccountStatistics summarises the accounts of a tenant
type AccountStatistics struct {
	TotalAccounts  int64 `json:"total_accounts"`
	ActiveAccounts int64 `json:"active_accounts"`
}

// HealthService reads accounts and their service history to compute health
// scores and notifications. It never writes.
type HealthService struct {
	accounts account.AccountRepository
	services account.ServiceRecordGateway
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time

	renewalWindowDays   int
	serviceHistoryLimit int
}

// Option configures a HealthService
type Option func(*HealthService)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *HealthService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *HealthService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRenewalWindow sets how many days ahead a contract end counts as due
func WithRenewalWindow(days int) Option {
	return func(s *HealthService) {
		if days > 0 {
			s.renewalWindowDays = days
		}
	}
}

// WithServiceHistoryLimit caps the service records fed into scoring
func WithServiceHistoryLimit(limit int) Option {
	return func(s *HealthService) {
		if limit > 0 {
			s.serviceHistoryLimit = limit
		}
	}
}

// WithTracer sets the tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(s *HealthService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewHealthService creates a new HealthService
func NewHealthService(accounts account.AccountRepository, services account.ServiceRecordGateway, opts ...Option) *HealthService {
	s := &HealthService{
		accounts:            accounts,
		services:            services,
		logger:              zap.NewNop(),
		tracer:              otel.Tracer(telemetry.TracerName),
		now:                 time.Now,
		renewalWindowDays:   account.DefaultRenewalWindowDays,
		serviceHistoryLimit: account.DefaultServiceHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalculateHealthScore scores one account. Returns shared.ErrNotFound when
// the account does not exist in the tenant.
func (s *HealthService) CalculateHealthScore(ctx context.Context, tenantID, accountID uuid.UUID) (*account.HealthScore, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.tracer, spanService, "score",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)
	defer span.End()

	acct, score, err := s.score(ctx, tenantID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Debug("Account health scored",
		zap.String("account_id", acct.ID.String()),
		zap.Int("overall_score", score.OverallScore),
		zap.Strings("risk_factors", score.RiskFactors),
	)
	telemetry.SetOK(span)
	return score, nil
}

// GetAccountNotifications derives the current notifications of one account
func (s *HealthService) GetAccountNotifications(ctx context.Context, tenantID, accountID uuid.UUID) ([]account.Notification, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.tracer, spanService, "notifications",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)
	defer span.End()

	acct, score, err := s.score(ctx, tenantID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetOK(span)
	return account.DeriveNotifications(acct, score, s.now(), s.renewalWindowDays), nil
}

// GetAccountStatistics counts all and active accounts of a tenant concurrently
func (s *HealthService) GetAccountStatistics(ctx context.Context, tenantID uuid.UUID) (*AccountStatistics, error) {
	stats := &AccountStatistics{}
	asOf := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.accounts.Count(gctx, tenantID)
		if err != nil {
			return backendError(fmt.Errorf("count accounts: %w", err))
		}
		stats.TotalAccounts = total
		return nil
	})
	g.Go(func() error {
		active, err := s.accounts.CountActive(gctx, tenantID, asOf)
		if err != nil {
			return backendError(fmt.Errorf("count active accounts: %w", err))
		}
		stats.ActiveAccounts = active
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute account statistics",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return stats, nil
}

func (s *HealthService) score(ctx context.Context, tenantID, accountID uuid.UUID) (*account.Account, *account.HealthScore, error) {
	acct, err := s.accounts.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, nil, backendError(err)
	}

	records, err := s.services.FetchServiceRecords(ctx, tenantID, acct.OwnerID, s.serviceHistoryLimit, analytics.DateRange{})
	if err != nil {
		s.logger.Error("Failed to fetch service records",
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
		return nil, nil, backendError(fmt.Errorf("fetch service records: %w", err))
	}

	scorer := &account.HealthScorer{
		Now:               s.now,
		RenewalWindowDays: s.renewalWindowDays,
	}
	return acct, scorer.Score(acct, records), nil
}

// backendError keeps domain errors such as NotFound and reports any other
// store failure as BackendUnavailable
func backendError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.ErrBackendUnavailable.WithCause(err)
}

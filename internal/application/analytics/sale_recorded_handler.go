package analytics

import (
	"context"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantCacheInvalidator drops the cached snapshots of a tenant
type TenantCacheInvalidator interface {
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// SaleRecordedHandler invalidates a tenant's cached analytics when a new
// sale is recorded, so the next read recomputes.
type SaleRecordedHandler struct {
	invalidator TenantCacheInvalidator
	logger      *zap.Logger
}

// NewSaleRecordedHandler creates a new SaleRecordedHandler
func NewSaleRecordedHandler(invalidator TenantCacheInvalidator, logger *zap.Logger) *SaleRecordedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleRecordedHandler{
		invalidator: invalidator,
		logger:      logger,
	}
}

// EventTypes implements shared.EventHandler
func (h *SaleRecordedHandler) EventTypes() []string {
	return []string{analytics.EventTypeSaleRecorded}
}

// Handle implements shared.EventHandler
func (h *SaleRecordedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.EventType() != analytics.EventTypeSaleRecorded {
		return nil
	}

	removed, err := h.invalidator.InvalidateTenantCache(ctx, event.TenantID())
	if err != nil {
		return err
	}

	h.logger.Debug("Tenant analytics cache invalidated after sale",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("sale_id", event.AggregateID().String()),
		zap.Int64("removed", removed),
	)
	return nil
}

var _ shared.EventHandler = (*SaleRecordedHandler)(nil)

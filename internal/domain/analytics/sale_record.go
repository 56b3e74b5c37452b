package analytics

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/erp/analytics/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is an immutable sales fact produced by transaction processing
type SaleRecord struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	StoreID    *uuid.UUID      `json:"store_id,omitempty"`
	EmployeeID *uuid.UUID      `json:"employee_id,omitempty"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewSaleRecord validates the inputs and creates a new sale record
func NewSaleRecord(tenantID uuid.UUID, category string, amount decimal.Decimal, occurredAt time.Time) (*SaleRecord, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Category is required")
	}
	if amount.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Amount must not be negative")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return &SaleRecord{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Category:   category,
		Amount:     amount,
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// TenantScope limits which records a caller may aggregate over.
// A nil AllowedStoreIDs means every store of the tenant; a non-nil empty
// slice means the caller may see nothing.
type TenantScope struct {
	TenantID        uuid.UUID   `json:"tenant_id"`
	AllowedStoreIDs []uuid.UUID `json:"allowed_store_ids,omitempty"`
}

// UnrestrictedScope returns a scope covering every store of the tenant
func UnrestrictedScope(tenantID uuid.UUID) TenantScope {
	return TenantScope{TenantID: tenantID}
}

// IsEmpty reports whether the scope resolved to an explicitly empty store set
func (s TenantScope) IsEmpty() bool {
	return s.AllowedStoreIDs != nil && len(s.AllowedStoreIDs) == 0
}

// IsRestricted reports whether the scope limits results to specific stores
func (s TenantScope) IsRestricted() bool {
	return len(s.AllowedStoreIDs) > 0
}

// storeKey returns a stable representation of the allowed stores
func (s TenantScope) storeKey() string {
	if !s.IsRestricted() {
		return unboundedSentinel
	}
	ids := make([]string, len(s.AllowedStoreIDs))
	for i, id := range s.AllowedStoreIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// DateRange is an optionally bounded time window. Nil bounds are unbounded.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// NewDateRange creates a closed date range
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: &start, End: &end}
}

// Validate returns ErrInvalidRange when the end precedes the start
func (r DateRange) Validate() error {
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return shared.ErrInvalidRange
	}
	return nil
}

// Contains reports whether t falls within the range (inclusive)
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// SaleFilter is the query handed to the record store gateway
type SaleFilter struct {
	Scope TenantScope
	Range DateRange
	Limit int // 0 means no limit
}

// SaleRecordGateway reads and writes sale records.
//
// FetchSaleRecords must return records ordered most-recent-first
// (occurred_at descending). Aggregation relies on that ordering to pick
// the recent sales slice.
type SaleRecordGateway interface {
	FetchSaleRecords(ctx context.Context, filter SaleFilter) ([]SaleRecord, error)
	Save(ctx context.Context, record *SaleRecord) error
}

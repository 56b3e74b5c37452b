package account

import (
	"context"
	"math"
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier ranks commercial accounts
type Tier string

const (
	TierPlatinum Tier = "PLATINUM"
	TierGold     Tier = "GOLD"
	TierSilver   Tier = "SILVER"
)

// IsValid reports whether t is a known tier
func (t Tier) IsValid() bool {
	switch t {
	case TierPlatinum, TierGold, TierSilver:
		return true
	}
	return false
}

// ServiceLevel is the support level purchased by an account
type ServiceLevel string

const (
	ServiceLevelPremium  ServiceLevel = "PREMIUM"
	ServiceLevelEnhanced ServiceLevel = "ENHANCED"
	ServiceLevelStandard ServiceLevel = "STANDARD"
)

// IsValid reports whether l is a known service level
func (l ServiceLevel) IsValid() bool {
	switch l {
	case ServiceLevelPremium, ServiceLevelEnhanced, ServiceLevelStandard:
		return true
	}
	return false
}

// Account is a large commercial account owned by a customer
type Account struct {
	ID                  uuid.UUID       `json:"id"`
	TenantID            uuid.UUID       `json:"tenant_id"`
	OwnerID             uuid.UUID       `json:"owner_id"`
	Name                string          `json:"name"`
	Tier                Tier            `json:"tier"`
	ServiceLevel        ServiceLevel    `json:"service_level"`
	AnnualRevenueTarget decimal.Decimal `json:"annual_revenue_target"`
	ContractEndDate     *time.Time      `json:"contract_end_date,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// DaysUntilContractEnd returns the whole days from now until the contract
// ends, rounded up. The second value is false when no end date is set.
// An expired contract yields a negative count.
func (a *Account) DaysUntilContractEnd(now time.Time) (int, bool) {
	if a.ContractEndDate == nil {
		return 0, false
	}
	days := a.ContractEndDate.Sub(now).Hours() / 24
	return int(math.Ceil(days)), true
}

// RenewalDue reports whether the contract ends within windowDays of now
func (a *Account) RenewalDue(now time.Time, windowDays int) bool {
	days, ok := a.DaysUntilContractEnd(now)
	return ok && days <= windowDays
}

// ServiceRecord is one completed service job billed to an account owner
type ServiceRecord struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	ServiceDate time.Time       `json:"service_date"`
	PartsCost   decimal.Decimal `json:"parts_cost"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	Description string          `json:"description,omitempty"`
}

// Total returns parts plus labor
func (r ServiceRecord) Total() decimal.Decimal {
	return r.PartsCost.Add(r.LaborCost)
}

// AccountRepository reads accounts
type AccountRepository interface {
	// FindByID returns shared.ErrNotFound when the account does not exist
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	// Count returns the number of accounts of the tenant
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// CountActive returns the accounts whose contract has not ended at asOf
	CountActive(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error)
}

// ServiceRecordGateway reads service history.
// Records are returned most-recent-first (service_date descending).
type ServiceRecordGateway interface {
	FetchServiceRecords(ctx context.Context, tenantID, ownerID uuid.UUID, limit int, dateRange analytics.DateRange) ([]ServiceRecord, error)
}

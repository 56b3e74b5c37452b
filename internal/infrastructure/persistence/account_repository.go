package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/analytics/internal/domain/account"
	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/erp/analytics/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements account.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by ID within a tenant
func (r *GormAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Count returns the number of accounts of a tenant
func (r *GormAccountRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Scopes(TenantScope(tenantID)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// CountActive returns the number of accounts whose contract is still running at asOf
func (r *GormAccountRepository) CountActive(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Scopes(TenantScope(tenantID)).
		Where("contract_end_date IS NULL OR contract_end_date >= ?", asOf.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active accounts: %w", err)
	}
	return count, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, acct *account.Account) error {
	model := &models.AccountModel{}
	model.FromDomain(acct)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GormServiceRecordRepository implements account.ServiceRecordGateway using GORM
type GormServiceRecordRepository struct {
	db *gorm.DB
}

// NewGormServiceRecordRepository creates a new GormServiceRecordRepository
func NewGormServiceRecordRepository(db *gorm.DB) *GormServiceRecordRepository {
	return &GormServiceRecordRepository{db: db}
}

// FetchServiceRecords returns an owner's service history, most recent first
func (r *GormServiceRecordRepository) FetchServiceRecords(ctx context.Context, tenantID, ownerID uuid.UUID, limit int, dateRange analytics.DateRange) ([]account.ServiceRecord, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ServiceRecordModel{}).
		Scopes(
			TenantScope(tenantID),
			TimeRangeScope("service_date", dateRange.Start, dateRange.End),
		).
		Where("owner_id = ?", ownerID).
		Order("service_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.ServiceRecordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch service records: %w", err)
	}

	records := make([]account.ServiceRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// Save inserts a service record
func (r *GormServiceRecordRepository) Save(ctx context.Context, record *account.ServiceRecord) error {
	model := &models.ServiceRecordModel{}
	model.FromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save service record: %w", err)
	}
	return nil
}

var (
	_ account.AccountRepository    = (*GormAccountRepository)(nil)
	_ account.ServiceRecordGateway = (*GormServiceRecordRepository)(nil)
)

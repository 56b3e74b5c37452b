package persistence

import (
	"context"
	"fmt"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRecordRepository implements analytics.SaleRecordGateway using GORM
type GormSaleRecordRepository struct {
	db *gorm.DB
}

// NewGormSaleRecordRepository creates a new GormSaleRecordRepository
func NewGormSaleRecordRepository(db *gorm.DB) *GormSaleRecordRepository {
	return &GormSaleRecordRepository{db: db}
}

// FetchSaleRecords returns the records matching filter, most recent first
func (r *GormSaleRecordRepository) FetchSaleRecords(ctx context.Context, filter analytics.SaleFilter) ([]analytics.SaleRecord, error) {
	if filter.Scope.IsEmpty() {
		return []analytics.SaleRecord{}, nil
	}

	query := r.db.WithContext(ctx).
		Model(&models.SaleRecordModel{}).
		Scopes(
			TenantScope(filter.Scope.TenantID),
			StoreScope(filter.Scope.AllowedStoreIDs),
			TimeRangeScope("occurred_at", filter.Range.Start, filter.Range.End),
		).
		Order("occurred_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.SaleRecordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sale records: %w", err)
	}

	records := make([]analytics.SaleRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// Save inserts a sale record
func (r *GormSaleRecordRepository) Save(ctx context.Context, record *analytics.SaleRecord) error {
	model := models.SaleRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save sale record: %w", err)
	}
	return nil
}

// Ensure GormSaleRecordRepository implements analytics.SaleRecordGateway
var _ analytics.SaleRecordGateway = (*GormSaleRecordRepository)(nil)

package models

import (
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecordModel is the persistence model for analytics.SaleRecord
type SaleRecordModel struct {
	TenantModel
	StoreID    *uuid.UUID      `gorm:"type:uuid;index"`
	EmployeeID *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID *uuid.UUID      `gorm:"type:uuid"`
	Category   string          `gorm:"type:varchar(100);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OccurredAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SaleRecordModel) TableName() string {
	return "sale_records"
}

// ToDomain converts the persistence model to a domain SaleRecord
func (m *SaleRecordModel) ToDomain() analytics.SaleRecord {
	return analytics.SaleRecord{
		ID:         m.ID,
		TenantID:   m.TenantID,
		StoreID:    m.StoreID,
		EmployeeID: m.EmployeeID,
		CustomerID: m.CustomerID,
		Category:   m.Category,
		Amount:     m.Amount,
		OccurredAt: m.OccurredAt.UTC(),
	}
}

// FromDomain populates the persistence model from a domain SaleRecord
func (m *SaleRecordModel) FromDomain(r *analytics.SaleRecord) {
	m.ID = r.ID
	m.TenantID = r.TenantID
	m.StoreID = r.StoreID
	m.EmployeeID = r.EmployeeID
	m.CustomerID = r.CustomerID
	m.Category = r.Category
	m.Amount = r.Amount
	m.OccurredAt = r.OccurredAt
}

// SaleRecordModelFromDomain creates a new persistence model from a domain SaleRecord
func SaleRecordModelFromDomain(r *analytics.SaleRecord) *SaleRecordModel {
	m := &SaleRecordModel{}
	m.FromDomain(r)
	return m
}

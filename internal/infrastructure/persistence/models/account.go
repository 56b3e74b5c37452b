package models

import (
	"time"

	"github.com/erp/analytics/internal/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for account.Account
type AccountModel struct {
	TenantModel
	OwnerID             uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name                string               `gorm:"type:varchar(200);not null"`
	Tier                account.Tier         `gorm:"type:varchar(20);not null;default:'SILVER'"`
	ServiceLevel        account.ServiceLevel `gorm:"type:varchar(20);not null;default:'STANDARD'"`
	AnnualRevenueTarget decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ContractEndDate     *time.Time           `gorm:"index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *account.Account {
	return &account.Account{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		OwnerID:             m.OwnerID,
		Name:                m.Name,
		Tier:                m.Tier,
		ServiceLevel:        m.ServiceLevel,
		AnnualRevenueTarget: m.AnnualRevenueTarget,
		ContractEndDate:     m.ContractEndDate,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *account.Account) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.OwnerID = a.OwnerID
	m.Name = a.Name
	m.Tier = a.Tier
	m.ServiceLevel = a.ServiceLevel
	m.AnnualRevenueTarget = a.AnnualRevenueTarget
	m.ContractEndDate = a.ContractEndDate
}

// ServiceRecordModel is the persistence model for account.ServiceRecord
type ServiceRecordModel struct {
	TenantModel
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceDate time.Time       `gorm:"not null;index"`
	PartsCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LaborCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ServiceRecordModel) TableName() string {
	return "service_records"
}

// ToDomain converts the persistence model to a domain ServiceRecord
func (m *ServiceRecordModel) ToDomain() account.ServiceRecord {
	return account.ServiceRecord{
		ID:          m.ID,
		TenantID:    m.TenantID,
		OwnerID:     m.OwnerID,
		ServiceDate: m.ServiceDate.UTC(),
		PartsCost:   m.PartsCost,
		LaborCost:   m.LaborCost,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain ServiceRecord
func (m *ServiceRecordModel) FromDomain(r *account.ServiceRecord) {
	m.ID = r.ID
	m.TenantID = r.TenantID
	m.OwnerID = r.OwnerID
	m.ServiceDate = r.ServiceDate
	m.PartsCost = r.PartsCost
	m.LaborCost = r.LaborCost
	m.Description = r.Description
}

package analytics

import (
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeSaleRecord is the aggregate type of sale record events
	AggregateTypeSaleRecord = "SaleRecord"
	// EventTypeSaleRecorded is published after a sale record is stored
	EventTypeSaleRecorded = "SaleRecorded"
)

// SaleRecordedEvent is published when a new sale record is ingested
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewSaleRecordedEvent creates a SaleRecordedEvent for record
func NewSaleRecordedEvent(record *SaleRecord) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSaleRecord, record.ID, record.TenantID),
		Category:        record.Category,
		Amount:          record.Amount,
	}
}

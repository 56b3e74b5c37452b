package dto

import (
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecordResponse is a sale record in API responses
type SaleRecordResponse struct {
	ID         uuid.UUID  `json:"id"`
	StoreID    *uuid.UUID `json:"store_id,omitempty"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Category   string     `json:"category"`
	Amount     float64    `json:"amount"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// CategorySalesResponse is one category row of the breakdown
type CategorySalesResponse struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Revenue  float64 `json:"revenue"`
}

// EmployeeSalesResponse is one employee row of the breakdown
type EmployeeSalesResponse struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Count      int       `json:"count"`
	Revenue    float64   `json:"revenue"`
}

// MonthSalesResponse is one month row of the breakdown
type MonthSalesResponse struct {
	Month   string  `json:"month"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// SalesAnalyticsResponse is the analytics snapshot returned by the API
type SalesAnalyticsResponse struct {
	TotalSales        int                     `json:"total_sales"`
	TotalRevenue      float64                 `json:"total_revenue"`
	AverageOrderValue float64                 `json:"average_order_value"`
	SalesByCategory   []CategorySalesResponse `json:"sales_by_category"`
	SalesByEmployee   []EmployeeSalesResponse `json:"sales_by_employee"`
	SalesByMonth      []MonthSalesResponse    `json:"sales_by_month"`
	RecentSales       []SaleRecordResponse    `json:"recent_sales"`
}

// RecordSaleRequest is the body of POST /analytics/sales
type RecordSaleRequest struct {
	StoreID    *uuid.UUID `json:"store_id"`
	EmployeeID *uuid.UUID `json:"employee_id"`
	CustomerID *uuid.UUID `json:"customer_id"`
	Category   string     `json:"category" binding:"required"`
	Amount     float64    `json:"amount" binding:"gte=0"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// ToDomain converts the request into a sale record of tenantID
func (r RecordSaleRequest) ToDomain(tenantID uuid.UUID) *analytics.SaleRecord {
	record := &analytics.SaleRecord{
		TenantID:   tenantID,
		StoreID:    r.StoreID,
		EmployeeID: r.EmployeeID,
		CustomerID: r.CustomerID,
		Category:   r.Category,
		Amount:     decimal.NewFromFloat(r.Amount),
	}
	if r.OccurredAt != nil {
		record.OccurredAt = *r.OccurredAt
	}
	return record
}

// InvalidationResponse reports how many cache entries were dropped
type InvalidationResponse struct {
	Removed int64 `json:"removed"`
}

// ToSaleRecordResponse converts a domain sale record
func ToSaleRecordResponse(r analytics.SaleRecord) SaleRecordResponse {
	return SaleRecordResponse{
		ID:         r.ID,
		StoreID:    r.StoreID,
		EmployeeID: r.EmployeeID,
		CustomerID: r.CustomerID,
		Category:   r.Category,
		Amount:     toFloat64(r.Amount),
		OccurredAt: r.OccurredAt,
	}
}

// ToSalesAnalyticsResponse converts a domain snapshot. Breakdown lists are
// never nil so they serialize as [].
func ToSalesAnalyticsResponse(a *analytics.SalesAnalytics) SalesAnalyticsResponse {
	resp := SalesAnalyticsResponse{
		TotalSales:        a.TotalSales,
		TotalRevenue:      toFloat64(a.TotalRevenue),
		AverageOrderValue: toFloat64(a.AverageOrderValue),
		SalesByCategory:   make([]CategorySalesResponse, 0, len(a.SalesByCategory)),
		SalesByEmployee:   make([]EmployeeSalesResponse, 0, len(a.SalesByEmployee)),
		SalesByMonth:      make([]MonthSalesResponse, 0, len(a.SalesByMonth)),
		RecentSales:       make([]SaleRecordResponse, 0, len(a.RecentSales)),
	}
	for _, c := range a.SalesByCategory {
		resp.SalesByCategory = append(resp.SalesByCategory, CategorySalesResponse{
			Category: c.Category,
			Count:    c.Count,
			Revenue:  toFloat64(c.Revenue),
		})
	}
	for _, e := range a.SalesByEmployee {
		resp.SalesByEmployee = append(resp.SalesByEmployee, EmployeeSalesResponse{
			EmployeeID: e.EmployeeID,
			Count:      e.Count,
			Revenue:    toFloat64(e.Revenue),
		})
	}
	for _, m := range a.SalesByMonth {
		resp.SalesByMonth = append(resp.SalesByMonth, MonthSalesResponse{
			Month:   m.Month,
			Count:   m.Count,
			Revenue: toFloat64(m.Revenue),
		})
	}
	for _, r := range a.RecentSales {
		resp.RecentSales = append(resp.RecentSales, ToSaleRecordResponse(r))
	}
	return resp
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

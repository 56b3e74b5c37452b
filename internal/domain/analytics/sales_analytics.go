package analytics

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecentSalesLimit is the number of records kept in SalesAnalytics.RecentSales
const RecentSalesLimit = 10

// monthKeyLayout formats the YYYY-MM grouping key
const monthKeyLayout = "2006-01"

// CategorySales holds the tally of one category
type CategorySales struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// EmployeeSales holds the tally of one employee
type EmployeeSales struct {
	EmployeeID uuid.UUID       `json:"employee_id"`
	Count      int             `json:"count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// MonthSales holds the tally of one calendar month (UTC)
type MonthSales struct {
	Month   string          `json:"month"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesAnalytics is a derived snapshot over a set of sale records
type SalesAnalytics struct {
	TotalSales        int             `json:"total_sales"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	SalesByCategory   []CategorySales `json:"sales_by_category"`
	SalesByEmployee   []EmployeeSales `json:"sales_by_employee"`
	SalesByMonth      []MonthSales    `json:"sales_by_month"`
	RecentSales       []SaleRecord    `json:"recent_sales"`
}

// EmptySalesAnalytics returns the all-zero snapshot with empty breakdowns
func EmptySalesAnalytics() *SalesAnalytics {
	return &SalesAnalytics{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		SalesByCategory:   []CategorySales{},
		SalesByEmployee:   []EmployeeSales{},
		SalesByMonth:      []MonthSales{},
		RecentSales:       []SaleRecord{},
	}
}

// Clone returns a deep copy whose slices and record ids share no memory with a
func (a *SalesAnalytics) Clone() *SalesAnalytics {
	if a == nil {
		return nil
	}
	c := *a
	c.SalesByCategory = slices.Clone(a.SalesByCategory)
	c.SalesByEmployee = slices.Clone(a.SalesByEmployee)
	c.SalesByMonth = slices.Clone(a.SalesByMonth)
	c.RecentSales = slices.Clone(a.RecentSales)
	for i, r := range c.RecentSales {
		r.StoreID = cloneID(r.StoreID)
		r.EmployeeID = cloneID(r.EmployeeID)
		r.CustomerID = cloneID(r.CustomerID)
		c.RecentSales[i] = r
	}
	return &c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// MonthKey returns the YYYY-MM key of t in UTC
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthKeyLayout)
}

// Aggregate computes a SalesAnalytics snapshot from records that are already
// filtered to the caller's range and scope and ordered most-recent-first.
func Aggregate(records []SaleRecord) *SalesAnalytics {
	result := EmptySalesAnalytics()
	if len(records) == 0 {
		return result
	}

	categoryIndex := make(map[string]int)
	employeeIndex := make(map[uuid.UUID]int)
	months := make(map[string]*MonthSales)

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)

		if i, ok := categoryIndex[r.Category]; ok {
			result.SalesByCategory[i].Count++
			result.SalesByCategory[i].Revenue = result.SalesByCategory[i].Revenue.Add(r.Amount)
		} else {
			categoryIndex[r.Category] = len(result.SalesByCategory)
			result.SalesByCategory = append(result.SalesByCategory, CategorySales{
				Category: r.Category,
				Count:    1,
				Revenue:  r.Amount,
			})
		}

		if r.EmployeeID != nil {
			if i, ok := employeeIndex[*r.EmployeeID]; ok {
				result.SalesByEmployee[i].Count++
				result.SalesByEmployee[i].Revenue = result.SalesByEmployee[i].Revenue.Add(r.Amount)
			} else {
				employeeIndex[*r.EmployeeID] = len(result.SalesByEmployee)
				result.SalesByEmployee = append(result.SalesByEmployee, EmployeeSales{
					EmployeeID: *r.EmployeeID,
					Count:      1,
					Revenue:    r.Amount,
				})
			}
		}

		key := MonthKey(r.OccurredAt)
		m, ok := months[key]
		if !ok {
			m = &MonthSales{Month: key, Revenue: decimal.Zero}
			months[key] = m
		}
		m.Count++
		m.Revenue = m.Revenue.Add(r.Amount)
	}

	result.TotalSales = len(records)
	result.TotalRevenue = total
	result.AverageOrderValue = total.Div(decimal.NewFromInt(int64(len(records)))).Round(2)

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result.SalesByMonth = append(result.SalesByMonth, *months[k])
	}

	n := min(len(records), RecentSalesLimit)
	result.RecentSales = append(result.RecentSales, records[:n]...)

	return result
}

package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAverageOrderTarget is the illustrative target attached to the
// average order value KPI
const DefaultAverageOrderTarget = 150.0

const kpiWindow = 30 * 24 * time.Hour

// KPI names
const (
	KPITotalRevenue      = "totalRevenue"
	KPITotalTransactions = "totalTransactions"
	KPIAverageOrderValue = "averageOrderValue"
)

// PerformanceMetric is a single KPI value
type PerformanceMetric struct {
	Name   string         `json:"name"`
	Value  float64        `json:"value"`
	Target *float64       `json:"target,omitempty"`
	Unit   string         `json:"unit"`
	Trend  TrendDirection `json:"trend"`
}

// CalculateKPIs computes revenue, transaction and average order KPIs over
// records. Revenue and transaction trends compare the 30 days before now with
// the 30 days before that; windows are anchored on now, not on the records.
// The average order value KPI is always STABLE.
func CalculateKPIs(records []SaleRecord, now time.Time, averageOrderTarget float64) []PerformanceMetric {
	lastStart := now.Add(-kpiWindow)
	prevStart := now.Add(-2 * kpiWindow)

	total := decimal.Zero
	var lastRevenue, prevRevenue decimal.Decimal
	var lastCount, prevCount int
	for _, r := range records {
		total = total.Add(r.Amount)
		switch {
		case r.OccurredAt.After(now):
			// future-dated records count toward totals only
		case !r.OccurredAt.Before(lastStart):
			lastRevenue = lastRevenue.Add(r.Amount)
			lastCount++
		case !r.OccurredAt.Before(prevStart):
			prevRevenue = prevRevenue.Add(r.Amount)
			prevCount++
		}
	}

	aov := decimal.Zero
	if len(records) > 0 {
		aov = total.Div(decimal.NewFromInt(int64(len(records)))).Round(2)
	}
	target := averageOrderTarget

	return []PerformanceMetric{
		{
			Name:  KPITotalRevenue,
			Value: toFloat64(total),
			Unit:  "currency",
			Trend: compareTrend(toFloat64(lastRevenue), toFloat64(prevRevenue)),
		},
		{
			Name:  KPITotalTransactions,
			Value: float64(len(records)),
			Unit:  "count",
			Trend: compareTrend(float64(lastCount), float64(prevCount)),
		},
		{
			Name:   KPIAverageOrderValue,
			Value:  toFloat64(aov),
			Target: &target,
			Unit:   "currency",
			Trend:  TrendStable,
		},
	}
}

// compareTrend returns STABLE when there is no previous value to compare with
func compareTrend(current, previous float64) TrendDirection {
	if previous == 0 {
		return TrendStable
	}
	switch {
	case current > previous:
		return TrendUp
	case current < previous:
		return TrendDown
	default:
		return TrendStable
	}
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

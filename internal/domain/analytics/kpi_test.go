package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kpiByName(metrics []PerformanceMetric, name string) PerformanceMetric {
	for _, m := range metrics {
		if m.Name == name {
			return m
		}
	}
	return PerformanceMetric{}
}

func TestCalculateKPIs(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	records := []SaleRecord{
		sale("a", 300, now.AddDate(0, 0, -5)),
		sale("a", 100, now.AddDate(0, 0, -10)),
		sale("a", 100, now.AddDate(0, 0, -45)),
		sale("a", 500, now.AddDate(0, 0, -90)),
	}

	metrics := CalculateKPIs(records, now, DefaultAverageOrderTarget)
	require.Len(t, metrics, 3)

	revenue := kpiByName(metrics, KPITotalRevenue)
	assert.InDelta(t, 1000, revenue.Value, 1e-9)
	assert.Equal(t, TrendUp, revenue.Trend)
	assert.Nil(t, revenue.Target)

	transactions := kpiByName(metrics, KPITotalTransactions)
	assert.InDelta(t, 4, transactions.Value, 1e-9)
	assert.Equal(t, TrendUp, transactions.Trend)

	aov := kpiByName(metrics, KPIAverageOrderValue)
	assert.InDelta(t, 250, aov.Value, 1e-9)
	require.NotNil(t, aov.Target)
	assert.InDelta(t, DefaultAverageOrderTarget, *aov.Target, 1e-9)
	assert.Equal(t, TrendStable, aov.Trend)
}

func TestCalculateKPIs_Trends(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		records          []SaleRecord
		wantRevenue      TrendDirection
		wantTransactions TrendDirection
	}{
		{
			name: "declining revenue",
			records: []SaleRecord{
				sale("a", 50, now.AddDate(0, 0, -3)),
				sale("a", 200, now.AddDate(0, 0, -40)),
			},
			wantRevenue:      TrendDown,
			wantTransactions: TrendStable,
		},
		{
			name:             "no previous window",
			records:          []SaleRecord{sale("a", 50, now.AddDate(0, 0, -3))},
			wantRevenue:      TrendStable,
			wantTransactions: TrendStable,
		},
		{
			name: "fewer transactions",
			records: []SaleRecord{
				sale("a", 300, now.AddDate(0, 0, -1)),
				sale("a", 10, now.AddDate(0, 0, -31)),
				sale("a", 10, now.AddDate(0, 0, -32)),
			},
			wantRevenue:      TrendUp,
			wantTransactions: TrendDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := CalculateKPIs(tt.records, now, DefaultAverageOrderTarget)
			assert.Equal(t, tt.wantRevenue, kpiByName(metrics, KPITotalRevenue).Trend)
			assert.Equal(t, tt.wantTransactions, kpiByName(metrics, KPITotalTransactions).Trend)
		})
	}
}

func TestCalculateKPIs_Empty(t *testing.T) {
	metrics := CalculateKPIs(nil, time.Now(), DefaultAverageOrderTarget)

	require.Len(t, metrics, 3)
	for _, m := range metrics {
		assert.Zero(t, m.Value, m.Name)
		assert.Equal(t, TrendStable, m.Trend, m.Name)
	}
}

func TestCalculateKPIs_FutureRecordsOutsideWindows(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	records := []SaleRecord{
		sale("a", 1000, now.AddDate(0, 0, 90)),
		sale("a", 10, now.AddDate(0, 0, -40)),
	}

	metrics := CalculateKPIs(records, now, DefaultAverageOrderTarget)

	revenue := kpiByName(metrics, KPITotalRevenue)
	assert.InDelta(t, 1010, revenue.Value, 1e-9)
	assert.Equal(t, TrendDown, revenue.Trend)
	assert.Equal(t, TrendDown, kpiByName(metrics, KPITotalTransactions).Trend)
}

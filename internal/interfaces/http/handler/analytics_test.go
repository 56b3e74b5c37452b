package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/erp/analytics/internal/interfaces/http/dto"
	"github.com/erp/analytics/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSalesAnalyticsService is a mock implementation of SalesAnalyticsService
type MockSalesAnalyticsService struct {
	mock.Mock
}

func (m *MockSalesAnalyticsService) GetSalesAnalytics(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) (*analytics.SalesAnalytics, error) {
	args := m.Called(ctx, scope, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.SalesAnalytics), args.Error(1)
}

func (m *MockSalesAnalyticsService) GetTodaysAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.SalesAnalytics), args.Error(1)
}

func (m *MockSalesAnalyticsService) GetMonthToDateAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.SalesAnalytics), args.Error(1)
}

func (m *MockSalesAnalyticsService) GetYearToDateAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.SalesAnalytics), args.Error(1)
}

func (m *MockSalesAnalyticsService) GenerateInsights(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.Insight, error) {
	args := m.Called(ctx, scope, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Insight), args.Error(1)
}

func (m *MockSalesAnalyticsService) CalculateKPIs(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.PerformanceMetric, error) {
	args := m.Called(ctx, scope, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.PerformanceMetric), args.Error(1)
}

func (m *MockSalesAnalyticsService) CalculateSalesTrends(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.SalesTrendPoint, error) {
	args := m.Called(ctx, scope, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.SalesTrendPoint), args.Error(1)
}

func (m *MockSalesAnalyticsService) InvalidateAnalyticsCache(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesAnalyticsService) RecordSale(ctx context.Context, record *analytics.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func setupAnalyticsRouter(svc SalesAnalyticsService) *gin.Engine {
	h := NewAnalyticsHandler(svc)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.TenantScope(middleware.DefaultScopeConfig()))
	g := r.Group("/api/v1/analytics")
	g.GET("/sales", h.GetSalesAnalytics)
	g.POST("/sales", h.RecordSale)
	g.GET("/sales/today", h.GetTodaysAnalytics)
	g.GET("/sales/month-to-date", h.GetMonthToDateAnalytics)
	g.GET("/sales/year-to-date", h.GetYearToDateAnalytics)
	g.GET("/insights", h.GetInsights)
	g.GET("/kpis", h.GetKPIs)
	g.GET("/trends", h.GetTrends)
	g.DELETE("/cache", h.InvalidateCache)
	return r
}

func sampleSnapshot() *analytics.SalesAnalytics {
	snapshot := analytics.EmptySalesAnalytics()
	snapshot.TotalSales = 2
	snapshot.TotalRevenue = decimal.NewFromInt(300)
	snapshot.AverageOrderValue = decimal.NewFromInt(150)
	snapshot.SalesByCategory = []analytics.CategorySales{
		{Category: "Tools", Count: 2, Revenue: decimal.NewFromInt(300)},
	}
	return snapshot
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) dto.SalesAnalyticsResponse {
	t.Helper()
	var body struct {
		Success bool                       `json:"success"`
		Data    dto.SalesAnalyticsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestAnalyticsHandler_GetSalesAnalytics(t *testing.T) {
	tenantID := uuid.New()
	storeID := uuid.New()

	svc := new(MockSalesAnalyticsService)
	svc.On("GetSalesAnalytics", mock.Anything,
		mock.MatchedBy(func(s analytics.TenantScope) bool {
			return s.TenantID == tenantID && len(s.AllowedStoreIDs) == 1 && s.AllowedStoreIDs[0] == storeID
		}),
		mock.MatchedBy(func(r analytics.DateRange) bool {
			return r.Start != nil && r.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) && r.End != nil
		}),
	).Return(sampleSnapshot(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/sales?start_date=2024-01-01&end_date=2024-01-31", nil)
	req.Header.Set(middleware.TenantHeader, tenantID.String())
	req.Header.Set(middleware.AllowedStoresHeader, storeID.String())
	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeSnapshot(t, w)
	assert.Equal(t, 2, data.TotalSales)
	assert.Equal(t, 300.0, data.TotalRevenue)
	assert.Equal(t, 150.0, data.AverageOrderValue)
	require.Len(t, data.SalesByCategory, 1)
	assert.Equal(t, "Tools", data.SalesByCategory[0].Category)
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_GetSalesAnalytics_EmptyListsAreArrays(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("GetSalesAnalytics", mock.Anything, mock.Anything, mock.Anything).
		Return(analytics.EmptySalesAnalytics(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/sales", nil)
	req.Header.Set(middleware.AllowedStoresHeader, "")
	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sales_by_category":[]`)
	assert.Contains(t, w.Body.String(), `"recent_sales":[]`)
}

func TestAnalyticsHandler_GetSalesAnalytics_BadDate(t *testing.T) {
	svc := new(MockSalesAnalyticsService)

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/sales?start_date=01/02/2024", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	svc.AssertNotCalled(t, "GetSalesAnalytics", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsHandler_GetSalesAnalytics_InvalidRange(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("GetSalesAnalytics", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.ErrInvalidRange)

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/sales?start_date=2024-02-01&end_date=2024-01-01", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidRange, resp.Error.Code)
}

func TestAnalyticsHandler_GetSalesAnalytics_BackendUnavailable(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("GetSalesAnalytics", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.ErrBackendUnavailable.WithCause(assert.AnError))

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/sales", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBackendUnavailable, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestAnalyticsHandler_PeriodEndpoints(t *testing.T) {
	tests := []struct {
		path   string
		method string
	}{
		{path: "/api/v1/analytics/sales/today", method: "GetTodaysAnalytics"},
		{path: "/api/v1/analytics/sales/month-to-date", method: "GetMonthToDateAnalytics"},
		{path: "/api/v1/analytics/sales/year-to-date", method: "GetYearToDateAnalytics"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			svc := new(MockSalesAnalyticsService)
			svc.On(tt.method, mock.Anything, mock.MatchedBy(func(s analytics.TenantScope) bool {
				return s.TenantID == middleware.DefaultDevTenantID
			})).Return(sampleSnapshot(), nil)

			w := httptest.NewRecorder()
			setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, 2, decodeSnapshot(t, w).TotalSales)
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalyticsHandler_GetInsights(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("GenerateInsights", mock.Anything, mock.Anything, mock.Anything).Return([]analytics.Insight{
		{Kind: analytics.InsightAchievement, Title: "Top Category: Tools", Actionable: false},
	}, nil)

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/insights", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []analytics.Insight `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Top Category: Tools", body.Data[0].Title)
}

func TestAnalyticsHandler_GetKPIs(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("CalculateKPIs", mock.Anything, mock.Anything, mock.Anything).Return([]analytics.PerformanceMetric{
		{Name: analytics.KPITotalRevenue, Value: 300, Unit: "USD", Trend: analytics.TrendStable},
	}, nil)

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/kpis", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []analytics.PerformanceMetric `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, analytics.KPITotalRevenue, body.Data[0].Name)
	assert.Equal(t, analytics.TrendStable, body.Data[0].Trend)
}

func TestAnalyticsHandler_GetTrends(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("CalculateSalesTrends", mock.Anything, mock.Anything, mock.Anything).Return([]analytics.SalesTrendPoint{
		{Period: "2024-01", Value: 100},
		{Period: "2024-02", Value: 150, Change: 50, ChangePercent: 50},
	}, nil)

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/trends", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []analytics.SalesTrendPoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, 50.0, body.Data[1].ChangePercent)
}

func TestAnalyticsHandler_RecordSale(t *testing.T) {
	tenantID := uuid.New()
	recordID := uuid.New()

	svc := new(MockSalesAnalyticsService)
	svc.On("RecordSale", mock.Anything, mock.MatchedBy(func(r *analytics.SaleRecord) bool {
		return r.TenantID == tenantID && r.Category == "Tools" && r.Amount.Equal(decimal.NewFromFloat(49.5))
	})).Run(func(args mock.Arguments) {
		r := args.Get(1).(*analytics.SaleRecord)
		r.ID = recordID
		r.OccurredAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	}).Return(nil)

	body := bytes.NewBufferString(`{"category":"Tools","amount":49.5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/sales", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeader, tenantID.String())
	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Success bool                   `json:"success"`
		Data    dto.SaleRecordResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, recordID, resp.Data.ID)
	assert.Equal(t, 49.5, resp.Data.Amount)
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_RecordSale_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"category":`},
		{name: "missing category", body: `{"amount":10}`},
		{name: "negative amount", body: `{"category":"Tools","amount":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSalesAnalyticsService)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/sales", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			setupAnalyticsRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
			svc.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyticsHandler_RecordSale_DomainRejection(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("RecordSale", mock.Anything, mock.Anything).
		Return(shared.ErrInvalidInput.WithMessage("Category is required"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analytics/sales", bytes.NewBufferString(`{"category":"  ","amount":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	assert.Equal(t, "Category is required", resp.Error.Message)
}

func TestAnalyticsHandler_InvalidateCache(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("InvalidateAnalyticsCache", mock.Anything).Return(int64(4), nil)

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/analytics/cache", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data dto.InvalidationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.Data.Removed)
}

func TestAnalyticsHandler_InvalidateCache_Failure(t *testing.T) {
	svc := new(MockSalesAnalyticsService)
	svc.On("InvalidateAnalyticsCache", mock.Anything).
		Return(int64(0), shared.ErrBackendUnavailable.WithCause(assert.AnError))

	w := httptest.NewRecorder()
	setupAnalyticsRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/analytics/cache", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

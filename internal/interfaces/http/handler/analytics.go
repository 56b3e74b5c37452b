package handler

import (
	"context"
	"net/http"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SalesAnalyticsService is what AnalyticsHandler needs from the application layer
type SalesAnalyticsService interface {
	GetSalesAnalytics(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) (*analytics.SalesAnalytics, error)
	GetTodaysAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error)
	GetMonthToDateAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error)
	GetYearToDateAnalytics(ctx context.Context, scope analytics.TenantScope) (*analytics.SalesAnalytics, error)
	GenerateInsights(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.Insight, error)
	CalculateKPIs(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.PerformanceMetric, error)
	CalculateSalesTrends(ctx context.Context, scope analytics.TenantScope, dateRange analytics.DateRange) ([]analytics.SalesTrendPoint, error)
	InvalidateAnalyticsCache(ctx context.Context) (int64, error)
	RecordSale(ctx context.Context, record *analytics.SaleRecord) error
}

// AnalyticsHandler serves the sales analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	service SalesAnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service SalesAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetSalesAnalytics godoc
// @ID           getSalesAnalytics
// @Summary      Sales analytics snapshot
// @Description  Totals and breakdowns over the caller's stores, optionally bounded by dates
// @Tags         analytics
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        X-Allowed-Stores header string false "Comma separated store IDs"
// @Param        start_date query string false "YYYY-MM-DD or RFC3339"
// @Param        end_date query string false "YYYY-MM-DD or RFC3339"
// @Success      200 {object} dto.Response{data=dto.SalesAnalyticsResponse}
// @Failure      400 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /analytics/sales [get]
func (h *AnalyticsHandler) GetSalesAnalytics(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.GetSalesAnalytics(c.Request.Context(), tenantScope(c), dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSalesAnalyticsResponse(result))
}

// GetTodaysAnalytics godoc
// @ID           getTodaysAnalytics
// @Summary      Sales analytics since midnight UTC
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.SalesAnalyticsResponse}
// @Router       /analytics/sales/today [get]
func (h *AnalyticsHandler) GetTodaysAnalytics(c *gin.Context) {
	h.respondSnapshot(c, h.service.GetTodaysAnalytics)
}

// GetMonthToDateAnalytics godoc
// @ID           getMonthToDateAnalytics
// @Summary      Sales analytics since the first of the month
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.SalesAnalyticsResponse}
// @Router       /analytics/sales/month-to-date [get]
func (h *AnalyticsHandler) GetMonthToDateAnalytics(c *gin.Context) {
	h.respondSnapshot(c, h.service.GetMonthToDateAnalytics)
}

// GetYearToDateAnalytics godoc
// @ID           getYearToDateAnalytics
// @Summary      Sales analytics since January 1st
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.SalesAnalyticsResponse}
// @Router       /analytics/sales/year-to-date [get]
func (h *AnalyticsHandler) GetYearToDateAnalytics(c *gin.Context) {
	h.respondSnapshot(c, h.service.GetYearToDateAnalytics)
}

// GetInsights godoc
// @ID           getSalesInsights
// @Summary      Heuristic sales insights
// @Tags         analytics
// @Produce      json
// @Param        start_date query string false "YYYY-MM-DD or RFC3339"
// @Param        end_date query string false "YYYY-MM-DD or RFC3339"
// @Success      200 {object} dto.Response
// @Router       /analytics/insights [get]
func (h *AnalyticsHandler) GetInsights(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	insights, err := h.service.GenerateInsights(c.Request.Context(), tenantScope(c), dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, insights)
}

// GetKPIs godoc
// @ID           getSalesKPIs
// @Summary      Revenue, transaction and average order KPIs
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /analytics/kpis [get]
func (h *AnalyticsHandler) GetKPIs(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	kpis, err := h.service.CalculateKPIs(c.Request.Context(), tenantScope(c), dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, kpis)
}

// GetTrends godoc
// @ID           getSalesTrends
// @Summary      Month over month revenue series
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /analytics/trends [get]
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	dateRange, err := parseDateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	trends, err := h.service.CalculateSalesTrends(c.Request.Context(), tenantScope(c), dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trends)
}

// RecordSale godoc
// @ID           recordSale
// @Summary      Record a sale
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request body dto.RecordSaleRequest true "Sale"
// @Success      201 {object} dto.Response{data=dto.SaleRecordResponse}
// @Failure      400 {object} dto.Response
// @Router       /analytics/sales [post]
func (h *AnalyticsHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	record := req.ToDomain(tenantScope(c).TenantID)
	if err := h.service.RecordSale(c.Request.Context(), record); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToSaleRecordResponse(*record))
}

// InvalidateCache godoc
// @ID           invalidateAnalyticsCache
// @Summary      Drop every cached analytics snapshot
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.InvalidationResponse}
// @Failure      503 {object} dto.Response
// @Router       /analytics/cache [delete]
func (h *AnalyticsHandler) InvalidateCache(c *gin.Context) {
	removed, err := h.service.InvalidateAnalyticsCache(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.InvalidationResponse{Removed: removed})
}

func (h *AnalyticsHandler) respondSnapshot(c *gin.Context, get func(context.Context, analytics.TenantScope) (*analytics.SalesAnalytics, error)) {
	result, err := get(c.Request.Context(), tenantScope(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSalesAnalyticsResponse(result))
}

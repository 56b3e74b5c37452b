package router

import (
	"github.com/erp/analytics/internal/interfaces/http/handler"
)

// AnalyticsRoutes maps the sales analytics endpoints under /analytics
func AnalyticsRoutes(h *handler.AnalyticsHandler) *DomainGroup {
	g := NewDomainGroup("analytics", "/analytics")

	g.GET("/sales", h.GetSalesAnalytics)
	g.POST("/sales", h.RecordSale)
	g.GET("/sales/today", h.GetTodaysAnalytics)
	g.GET("/sales/month-to-date", h.GetMonthToDateAnalytics)
	g.GET("/sales/year-to-date", h.GetYearToDateAnalytics)
	g.GET("/insights", h.GetInsights)
	g.GET("/kpis", h.GetKPIs)
	g.GET("/trends", h.GetTrends)
	g.DELETE("/cache", h.InvalidateCache)

	return g
}

// AccountRoutes maps the account health endpoints under /accounts
func AccountRoutes(h *handler.AccountHandler) *DomainGroup {
	g := NewDomainGroup("accounts", "/accounts")

	g.GET("/statistics", h.GetStatistics)
	g.GET("/:id/health", h.GetHealthScore)
	g.GET("/:id/notifications", h.GetNotifications)

	return g
}

package handler

import (
	"context"

	appaccount "github.com/erp/analytics/internal/application/account"
	"github.com/erp/analytics/internal/domain/account"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHealthService is what AccountHandler needs from the application layer
type AccountHealthService interface {
	CalculateHealthScore(ctx context.Context, tenantID, accountID uuid.UUID) (*account.HealthScore, error)
	GetAccountNotifications(ctx context.Context, tenantID, accountID uuid.UUID) ([]account.Notification, error)
	GetAccountStatistics(ctx context.Context, tenantID uuid.UUID) (*appaccount.AccountStatistics, error)
}

// AccountHandler serves account health endpoints
type AccountHandler struct {
	BaseHandler
	service AccountHealthService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountHealthService) *AccountHandler {
	return &AccountHandler{service: service}
}

// GetHealthScore godoc
// @ID           getAccountHealth
// @Summary      Account health score
// @Tags         accounts
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=account.HealthScore}
// @Failure      404 {object} dto.Response
// @Router       /accounts/{id}/health [get]
func (h *AccountHandler) GetHealthScore(c *gin.Context) {
	accountID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	score, err := h.service.CalculateHealthScore(c.Request.Context(), tenantScope(c).TenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, score)
}

// GetNotifications godoc
// @ID           getAccountNotifications
// @Summary      Renewal and health notifications of an account
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]account.Notification}
// @Failure      404 {object} dto.Response
// @Router       /accounts/{id}/notifications [get]
func (h *AccountHandler) GetNotifications(c *gin.Context) {
	accountID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	notifications, err := h.service.GetAccountNotifications(c.Request.Context(), tenantScope(c).TenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notifications)
}

// GetStatistics godoc
// @ID           getAccountStatistics
// @Summary      Total and active account counts
// @Tags         accounts
// @Produce      json
// @Success      200 {object} dto.Response{data=appaccount.AccountStatistics}
// @Router       /accounts/statistics [get]
func (h *AccountHandler) GetStatistics(c *gin.Context) {
	stats, err := h.service.GetAccountStatistics(c.Request.Context(), tenantScope(c).TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

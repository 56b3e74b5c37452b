package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appaccount "github.com/erp/analytics/internal/application/account"
	"github.com/erp/analytics/internal/domain/account"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/erp/analytics/internal/interfaces/http/dto"
	"github.com/erp/analytics/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAccountHealthService is a mock implementation of AccountHealthService
type MockAccountHealthService struct {
	mock.Mock
}

func (m *MockAccountHealthService) CalculateHealthScore(ctx context.Context, tenantID, accountID uuid.UUID) (*account.HealthScore, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.HealthScore), args.Error(1)
}

func (m *MockAccountHealthService) GetAccountNotifications(ctx context.Context, tenantID, accountID uuid.UUID) ([]account.Notification, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.Notification), args.Error(1)
}

func (m *MockAccountHealthService) GetAccountStatistics(ctx context.Context, tenantID uuid.UUID) (*appaccount.AccountStatistics, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appaccount.AccountStatistics), args.Error(1)
}

func setupAccountRouter(svc AccountHealthService) *gin.Engine {
	h := NewAccountHandler(svc)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.TenantScope(middleware.DefaultScopeConfig()))
	g := r.Group("/api/v1/accounts")
	g.GET("/statistics", h.GetStatistics)
	g.GET("/:id/health", h.GetHealthScore)
	g.GET("/:id/notifications", h.GetNotifications)
	return r
}

func TestAccountHandler_GetHealthScore(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()

	svc := new(MockAccountHealthService)
	svc.On("CalculateHealthScore", mock.Anything, tenantID, accountID).Return(&account.HealthScore{
		RevenueHealth:      85,
		ServiceHealth:      50,
		PaymentHealth:      account.PaymentHealthPlaceholder,
		RelationshipHealth: 70,
		OverallScore:       68,
		RiskFactors:        []string{account.RiskRenewalApproaching},
		Recommendations:    []string{account.RecommendInitiateRenewal},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+accountID.String()+"/health", nil)
	req.Header.Set(middleware.TenantHeader, tenantID.String())
	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool                `json:"success"`
		Data    account.HealthScore `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 68, body.Data.OverallScore)
	assert.Equal(t, []string{account.RiskRenewalApproaching}, body.Data.RiskFactors)
	svc.AssertExpectations(t)
}

func TestAccountHandler_GetHealthScore_InvalidID(t *testing.T) {
	svc := new(MockAccountHealthService)

	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/not-a-uuid/health", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	svc.AssertNotCalled(t, "CalculateHealthScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountHandler_GetHealthScore_NotFound(t *testing.T) {
	svc := new(MockAccountHealthService)
	svc.On("CalculateHealthScore", mock.Anything, middleware.DefaultDevTenantID, mock.Anything).
		Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+uuid.NewString()+"/health", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestAccountHandler_GetHealthScore_UnexpectedError(t *testing.T) {
	svc := new(MockAccountHealthService)
	svc.On("CalculateHealthScore", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+uuid.NewString()+"/health", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
}

func TestAccountHandler_GetNotifications(t *testing.T) {
	accountID := uuid.New()
	due := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	svc := new(MockAccountHealthService)
	svc.On("GetAccountNotifications", mock.Anything, middleware.DefaultDevTenantID, accountID).Return([]account.Notification{
		{
			Type:           account.NotificationContractRenewalDue,
			Priority:       account.PriorityHigh,
			Message:        "Contract for Acme expires in 20 days",
			ActionRequired: true,
			DueDate:        &due,
		},
	}, nil)

	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+accountID.String()+"/notifications", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []account.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, account.NotificationContractRenewalDue, body.Data[0].Type)
	assert.Equal(t, account.PriorityHigh, body.Data[0].Priority)
	require.NotNil(t, body.Data[0].DueDate)
	assert.True(t, due.Equal(*body.Data[0].DueDate))
}

func TestAccountHandler_GetNotifications_Empty(t *testing.T) {
	svc := new(MockAccountHealthService)
	svc.On("GetAccountNotifications", mock.Anything, mock.Anything, mock.Anything).
		Return([]account.Notification{}, nil)

	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+uuid.NewString()+"/notifications", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestAccountHandler_GetStatistics(t *testing.T) {
	tenantID := uuid.New()

	svc := new(MockAccountHealthService)
	svc.On("GetAccountStatistics", mock.Anything, tenantID).
		Return(&appaccount.AccountStatistics{TotalAccounts: 12, ActiveAccounts: 9}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/statistics", nil)
	req.Header.Set(middleware.TenantHeader, tenantID.String())
	w := httptest.NewRecorder()
	setupAccountRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data appaccount.AccountStatistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.Data.TotalAccounts)
	assert.Equal(t, int64(9), body.Data.ActiveAccounts)
}

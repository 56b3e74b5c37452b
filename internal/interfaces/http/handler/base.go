// Package handler holds the gin handlers of the analytics API.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/domain/shared"
	"github.com/erp/analytics/internal/infrastructure/logger"
	"github.com/erp/analytics/internal/interfaces/http/dto"
	"github.com/erp/analytics/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// tenantScope returns the scope resolved by the scope middleware, falling
// back to the whole development tenant when the middleware did not run.
func tenantScope(c *gin.Context) analytics.TenantScope {
	if scope, ok := middleware.GetTenantScope(c); ok {
		return scope
	}
	return analytics.UnrestrictedScope(middleware.DefaultDevTenantID)
}

// parseDateRange reads start_date and end_date. Both accept YYYY-MM-DD or
// RFC3339; a date-only end_date covers its whole day.
func parseDateRange(c *gin.Context) (analytics.DateRange, error) {
	var r analytics.DateRange

	if raw := strings.TrimSpace(c.Query("start_date")); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return r, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Invalid start_date %q", raw))
		}
		r.Start = &t
	}
	if raw := strings.TrimSpace(c.Query("end_date")); raw != "" {
		t, dateOnly, err := parseDate(raw)
		if err != nil {
			return r, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Invalid end_date %q", raw))
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.End = &t
	}
	return r, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

// parseUUIDParam parses a path parameter as UUID
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.ErrInvalidInput.WithMessage("Invalid " + name + " format")
	}
	return id, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts domain errors to HTTP responses; anything else is a 500
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unexpected error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

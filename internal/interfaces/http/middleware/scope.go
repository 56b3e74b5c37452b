package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/analytics/internal/domain/analytics"
	"github.com/erp/analytics/internal/infrastructure/logger"
	"github.com/erp/analytics/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Scope headers and context keys
const (
	TenantHeader        = "X-Tenant-ID"
	AllowedStoresHeader = "X-Allowed-Stores"

	TenantScopeKey = "tenant_scope"
)

// DefaultDevTenantID is used when no tenant header is sent
var DefaultDevTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// ScopeConfig configures the TenantScope middleware
type ScopeConfig struct {
	// DefaultTenantID is used when the request has no X-Tenant-ID.
	// uuid.Nil makes the header mandatory.
	DefaultTenantID uuid.UUID
	// SkipPaths are served without a scope (health checks)
	SkipPaths []string
}

// DefaultScopeConfig returns the development scope configuration
func DefaultScopeConfig() ScopeConfig {
	return ScopeConfig{
		DefaultTenantID: DefaultDevTenantID,
		SkipPaths:       []string{"/health"},
	}
}

// TenantScope resolves the caller's tenant and store scope from headers.
//
// X-Allowed-Stores absent means every store of the tenant. Present but empty
// means no store at all, which yields empty analytics downstream. Otherwise it
// is a comma separated list of store UUIDs.
func TenantScope(cfg ScopeConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range cfg.SkipPaths {
			if c.Request.URL.Path == p {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if raw := strings.TrimSpace(c.GetHeader(TenantHeader)); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				abortBadRequest(c, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			abortBadRequest(c, "Tenant identification required")
			return
		}

		scope := analytics.UnrestrictedScope(tenantID)
		if values, present := c.Request.Header[http.CanonicalHeaderKey(AllowedStoresHeader)]; present {
			stores, err := parseStoreIDs(strings.Join(values, ","))
			if err != nil {
				abortBadRequest(c, "Invalid store ID in "+AllowedStoresHeader)
				return
			}
			scope.AllowedStoreIDs = stores
		}

		c.Set(TenantScopeKey, scope)
		ctx, _ := logger.WithTenantID(c.Request.Context(), logger.FromContext(c.Request.Context()), tenantID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenantScope returns the scope resolved by TenantScope
func GetTenantScope(c *gin.Context) (analytics.TenantScope, bool) {
	v, ok := c.Get(TenantScopeKey)
	if !ok {
		return analytics.TenantScope{}, false
	}
	scope, ok := v.(analytics.TenantScope)
	return scope, ok
}

// parseStoreIDs returns a non-nil slice, empty when raw holds no ids
func parseStoreIDs(raw string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, GetRequestID(c)))
}

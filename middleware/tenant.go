package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
)

const (
	TenantHeader = "X-Tenant-ID"
	TenantKey    = "tenant_id"
)

var tenantPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Tenant resolves the store a request belongs to from the X-Tenant-ID
// header, falling back to defaultTenant.
func Tenant(defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := strings.ToLower(strings.TrimSpace(c.GetHeader(TenantHeader)))
		if tenant == "" {
			tenant = defaultTenant
		}
		if !tenantPattern.MatchString(tenant) {
			_ = c.Error(apperrors.NewErrorf("invalid tenant %q", tenant).
				WithHint("Invalid tenant identifier").
				Mark(apperrors.ErrValidation))
			c.Abort()
			return
		}
		c.Set(TenantKey, tenant)
		c.Next()
	}
}

// GetTenantID returns the tenant resolved for the request
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantKey)
}

package auth

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/domain"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

// TenantHeader selects the tenant a request addresses.
const TenantHeader = "X-Tenant-ID"

const tenantKey = "tenant_id"

var tenantPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// TenantMiddleware resolves the tenant from the X-Tenant-ID header, falling
// back to fallback when the header is absent.
func TenantMiddleware(fallback domain.TenantID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(TenantHeader))
		if raw == "" {
			c.Locals(tenantKey, fallback)
			return c.Next()
		}
		if !tenantPattern.MatchString(raw) {
			return apperrors.NewValidationError("invalid tenant id", map[string]any{"header": TenantHeader})
		}
		c.Locals(tenantKey, domain.TenantID(raw))
		return c.Next()
	}
}

// TenantFromContext returns the tenant resolved by TenantMiddleware.
func TenantFromContext(c *fiber.Ctx) domain.TenantID {
	tenant, _ := c.Locals(tenantKey).(domain.TenantID)
	return tenant
}

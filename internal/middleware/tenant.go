package middleware

import (
	"errors"
	"net"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/logger"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/gorm"
)

// TenantResolver turns request hosts into tenant context. The leftmost
// host label is the tenant slug; the bare root domain carries no tenant.
type TenantResolver struct {
	DB         *gorm.DB
	RootDomain string
	// DevFallback substitutes the oldest tenant for unknown slugs.
	// Development only.
	DevFallback bool
}

const tenantLocal = "tenant"

// Resolve is installed early in the chain. It stores the resolved tenant
// in locals; routes that require one call RequireTenant after it.
func (r *TenantResolver) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		host := c.Hostname()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.ToLower(host)

		// The bare platform domain and raw IPs serve the unscoped
		// surface (signup, superuser).
		if host == r.RootDomain || net.ParseIP(host) != nil {
			return c.Next()
		}

		slug, _, found := strings.Cut(host, ".")
		if !found {
			slug = host
		}
		if slug == "" || numericOnly(slug) {
			return utils.Error(c, fiber.StatusBadRequest, "malformed host")
		}

		var tenant models.Tenant
		err := r.DB.First(&tenant, "slug = ?", slug).Error
		if errors.Is(err, gorm.ErrRecordNotFound) && r.DevFallback {
			err = r.DB.Order("created_at ASC").First(&tenant).Error
			if err == nil {
				logger.Warn("tenant_dev_fallback", map[string]interface{}{
					"requested": slug,
					"resolved":  tenant.Slug,
				})
			}
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Error(c, fiber.StatusNotFound, "tenant not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed to resolve tenant")
		}

		c.Locals(tenantLocal, &tenant)
		return c.Next()
	}
}

// RequireTenant runs after authentication and rejects requests whose
// authenticated user does not belong to the resolved tenant. Superusers
// pass everywhere.
func RequireTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant := GetCurrentTenant(c)
		if tenant == nil {
			return utils.Error(c, fiber.StatusNotFound, "tenant not found")
		}

		user := GetCurrentUser(c)
		if user != nil && !user.MemberOf(tenant.ID) {
			logger.WarnWithUser(user.ID.String(), "tenant_scope_violation", map[string]interface{}{
				"tenant": tenant.Slug,
			})
			return utils.Error(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}

func GetCurrentTenant(c *fiber.Ctx) *models.Tenant {
	if tenant, ok := c.Locals(tenantLocal).(*models.Tenant); ok {
		return tenant
	}
	return nil
}

func numericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

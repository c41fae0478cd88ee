package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/pkg/logger"
)

// RequestLogger emits one structured line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals("requestID", requestID)

		err := c.Next()

		details := map[string]interface{}{
			"requestID": requestID,
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    c.Response().StatusCode(),
			"duration":  time.Since(start).String(),
			"ip":        c.IP(),
		}
		if tenant := GetCurrentTenant(c); tenant != nil {
			details["tenant"] = tenant.Slug
		}

		if userID := logger.GetUserIDFromContext(c); userID != nil {
			logger.InfoWithUser(*userID, "http_request", details)
		} else {
			logger.Info("http_request", details)
		}
		return err
	}
}

// SecurityLogger flags denied requests for audit review.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if status == fiber.StatusUnauthorized || status == fiber.StatusForbidden {
			details := map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"status": status,
				"ip":     c.IP(),
			}
			if userID := logger.GetUserIDFromContext(c); userID != nil {
				logger.WarnWithUser(*userID, "access_denied", details)
			} else {
				logger.Warn("access_denied", details)
			}
		}
		return err
	}
}

package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/gorm"
)

const userLocal = "currentUser"

// RequireAuth validates the bearer token and loads the user row so
// downstream code always works with fresh role and tenant membership.
func RequireAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed to load user")
		}

		c.Locals(userLocal, &user)
		c.Locals("userID", user.ID.String())
		return c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present but lets
// anonymous requests through. Used on token-share routes where a session
// may or may not exist.
func OptionalAuth(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Next()
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err == nil {
			c.Locals(userLocal, &user)
			c.Locals("userID", user.ID.String())
		}
		return c.Next()
	}
}

func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
		}
		if !user.IsSuperuser() && user.Role != models.UserRoleAdmin {
			return utils.Error(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}

func SuperuserOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
		}
		if !user.IsSuperuser() {
			return utils.Error(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(userLocal).(*models.User); ok {
		return user
	}
	return nil
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/middleware"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/logger"
	"github.com/staffdocs/backend/pkg/utils"
)

func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, utils.Error(c, fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// serviceError maps services sentinels onto HTTP responses. Anything
// unmapped is an internal error and gets logged with the request ID.
func serviceError(c *fiber.Ctx, err error) error {
	var storageErr *services.StorageError

	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Error(c, fiber.StatusForbidden, "access denied")
	case errors.Is(err, services.ErrTenantMismatch):
		return utils.Error(c, fiber.StatusForbidden, "access denied")
	case errors.Is(err, services.ErrVisibilityMismatch):
		return utils.Error(c, fiber.StatusBadRequest, "invalid tab context")
	case errors.Is(err, services.ErrInvalidParent):
		return utils.Error(c, fiber.StatusBadRequest, "invalid parent folder")
	case errors.Is(err, services.ErrInvalidCycle):
		return utils.Error(c, fiber.StatusBadRequest, "cannot move a folder into itself")
	case errors.Is(err, services.ErrInvalidName):
		return utils.Error(c, fiber.StatusBadRequest, "invalid name")
	case errors.Is(err, services.ErrDuplicateName):
		return utils.Error(c, fiber.StatusBadRequest, "name already exists here")
	case errors.Is(err, services.ErrInvalidTimeRange):
		return utils.Error(c, fiber.StatusBadRequest, "invalid time range")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	case errors.As(err, &storageErr):
		logger.Error("storage_failure", err, map[string]interface{}{
			"op":   storageErr.Op,
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "storage failure")
	default:
		logger.Error("internal_error", err, map[string]interface{}{
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "internal error")
	}
}

// requestScope pulls the authenticated user plus the resolved tenant. For
// superusers operating on a tenant subdomain the resolved tenant wins;
// regular users always act within their own.
func requestScope(c *fiber.Ctx) (*models.User, uuid.UUID, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, uuid.Nil, utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	if tenant := middleware.GetCurrentTenant(c); tenant != nil {
		return user, tenant.ID, nil
	}
	if user.TenantID != nil {
		return user, *user.TenantID, nil
	}
	return nil, uuid.Nil, utils.Error(c, fiber.StatusNotFound, "tenant not found")
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/middleware"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/logger"
	"github.com/staffdocs/backend/pkg/utils"
)

type TenantHandler struct {
	Tenants *services.TenantService
}

func NewTenantHandler(tenants *services.TenantService) *TenantHandler {
	return &TenantHandler{Tenants: tenants}
}

// Apply is the public signup endpoint, served on the root domain.
func (h *TenantHandler) Apply(c *fiber.Ctx) error {
	var req services.ApplyInput
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	app, err := h.Tenants.Apply(req)
	if err != nil {
		if err == services.ErrDuplicateName {
			return utils.Error(c, fiber.StatusConflict, "slug already taken")
		}
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	logger.Info("tenant_application", map[string]interface{}{
		"company": app.CompanyName,
		"slug":    app.Slug,
	})
	return utils.Success(c, fiber.StatusCreated, app)
}

func (h *TenantHandler) ListApplications(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)

	apps, err := h.Tenants.ListApplications(user, models.ApplicationStatus(c.Query("status")))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, apps)
}

func (h *TenantHandler) Approve(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	tenant, initialPassword, err := h.Tenants.Approve(user, id)
	if err != nil {
		return serviceError(c, err)
	}

	logger.InfoWithUser(user.ID.String(), "tenant_approved", map[string]interface{}{
		"tenant": tenant.Slug,
	})
	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"tenant": tenant,
		// Returned once; the admin is expected to change it immediately.
		"initialPassword": initialPassword,
	})
}

func (h *TenantHandler) Reject(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Tenants.Reject(user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"rejected": true})
}

func (h *TenantHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)

	tenants, err := h.Tenants.ListTenants(user)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, tenants)
}

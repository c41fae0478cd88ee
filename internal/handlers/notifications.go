package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/middleware"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/utils"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	notifications, err := h.Notifications.ListForUser(user, c.QueryBool("unread"))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Notifications.MarkRead(user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"read": true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	if err := h.Notifications.MarkAllRead(user); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"read": true})
}

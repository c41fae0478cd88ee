package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/utils"
)

type EventHandler struct {
	Events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{Events: events}
}

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	WithMeet    bool      `json:"withMeet"`
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	var req createEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	event, err := h.Events.Create(user, tenantID, services.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		WithMeet:    req.WithMeet,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, event)
}

// List filters by an optional from/to window given as RFC 3339 query
// params.
func (h *EventHandler) List(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid from time")
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid to time")
		}
		to = parsed
	}

	events, err := h.Events.List(user, tenantID, from, to)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, events)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Events.Delete(user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

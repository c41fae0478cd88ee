package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/utils"
)

type TaskHandler struct {
	Tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{Tasks: tasks}
}

type createTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"dueDate"`
	FolderID     *uuid.UUID `json:"folderID"`
	AssignedToID *uuid.UUID `json:"assignedToID"`
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	task, err := h.Tasks.Create(user, tenantID, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		FolderID:     req.FolderID,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, task)
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	tasks, err := h.Tasks.List(user, tenantID, models.TaskStatus(c.Query("status")))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, tasks)
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var req updateTaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	task, err := h.Tasks.UpdateStatus(user, id, models.TaskStatus(req.Status))
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, task)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Tasks.Delete(user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

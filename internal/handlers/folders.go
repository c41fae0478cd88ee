package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/utils"
)

type FolderHandler struct {
	Folders *services.FolderService
}

func NewFolderHandler(folders *services.FolderService) *FolderHandler {
	return &FolderHandler{Folders: folders}
}

type createFolderRequest struct {
	Name       string     `json:"name"`
	ParentID   *uuid.UUID `json:"parentID"`
	Visibility string     `json:"visibility"`
}

func (h *FolderHandler) Create(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folder, err := h.Folders.Create(user, tenantID, services.CreateFolderInput{
		Name:       req.Name,
		ParentID:   req.ParentID,
		Visibility: models.Visibility(req.Visibility),
	})
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, folder)
}

// List serves one tree level. Query params: visibility (public|personal),
// folder (optional parent id; omitted lists roots).
func (h *FolderHandler) List(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	var parentID *uuid.UUID
	if raw := c.Query("folder"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid id")
		}
		parentID = &id
	}

	visibility := models.Visibility(c.Query("visibility", string(models.VisibilityPublic)))
	listing, err := h.Folders.ListChildren(user, tenantID, parentID, visibility)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, listing)
}

func (h *FolderHandler) Get(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	folder, err := h.Folders.Get(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, folder)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *FolderHandler) Rename(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folder, err := h.Folders.Rename(user, id, req.Name)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, folder)
}

type moveRequest struct {
	ParentID *uuid.UUID `json:"parentID"`
}

func (h *FolderHandler) Move(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folder, err := h.Folders.Move(user, id, req.ParentID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, folder)
}

func (h *FolderHandler) Delete(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Folders.Delete(c.Context(), user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

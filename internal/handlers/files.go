package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/utils"
)

type FileHandler struct {
	Files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{Files: files}
}

// Upload accepts multipart form data: "file" plus optional "folderID" and
// "visibility" fields. When a folder is given its visibility wins.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "missing file")
	}

	var folderID *uuid.UUID
	if raw := c.FormValue("folderID"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid id")
		}
		folderID = &id
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	file, err := h.Files.Upload(c.Context(), user, tenantID, services.UploadInput{
		FolderID:   folderID,
		Visibility: models.Visibility(c.FormValue("visibility", string(models.VisibilityPublic))),
		Name:       fileHeader.Filename,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Size:       fileHeader.Size,
		Reader:     src,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, file)
}

func (h *FileHandler) Download(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	file, reader, err := h.Files.Download(c.Context(), user, id)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	return c.SendStream(reader)
}

func (h *FileHandler) Rename(c *fiber.Ctx) error {
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

	file, err := h.Files.Rename(user, id, req.Name)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

type moveFileRequest struct {
	FolderID *uuid.UUID `json:"folderID"`
}

func (h *FileHandler) Move(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var req moveFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := h.Files.Move(user, id, req.FolderID)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FileHandler) Delete(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Files.Delete(c.Context(), user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

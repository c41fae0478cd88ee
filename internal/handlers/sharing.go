package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/utils"
)

type SharingHandler struct {
	Sharing *services.SharingService
}

func NewSharingHandler(sharing *services.SharingService) *SharingHandler {
	return &SharingHandler{Sharing: sharing}
}

type shareFolderRequest struct {
	EndTime    *time.Time `json:"endTime"`
	Subfolders bool       `json:"subfolders"`
	Files      bool       `json:"files"`
}

func (h *SharingHandler) ShareFolder(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var req shareFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.EndTime != nil && req.EndTime.Before(time.Now()) {
		return utils.Error(c, fiber.StatusBadRequest, "end time is in the past")
	}

	folder, err := h.Sharing.ShareFolder(user, id, services.ShareOptions{
		EndTime:    req.EndTime,
		Subfolders: req.Subfolders,
		Files:      req.Files,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"folder":     folder,
		"shareToken": folder.ShareToken,
	})
}

func (h *SharingHandler) UnshareFolder(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	folder, err := h.Sharing.UnshareFolder(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, folder)
}

type shareFileRequest struct {
	EndTime *time.Time `json:"endTime"`
}

func (h *SharingHandler) ShareFile(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	var req shareFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.EndTime != nil && req.EndTime.Before(time.Now()) {
		return utils.Error(c, fiber.StatusBadRequest, "end time is in the past")
	}

	file, err := h.Sharing.ShareFile(user, id, req.EndTime)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"file":       file,
		"shareToken": file.ShareToken,
	})
}

func (h *SharingHandler) UnshareFile(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	file, err := h.Sharing.UnshareFile(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *SharingHandler) RegenerateFolderToken(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	folder, err := h.Sharing.RegenerateFolderToken(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"shareToken": folder.ShareToken})
}

func (h *SharingHandler) RegenerateFileToken(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	file, err := h.Sharing.RegenerateFileToken(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"shareToken": file.ShareToken})
}

// Public token endpoints below. No auth; the token is the credential.

func (h *SharingHandler) AccessFolder(c *fiber.Ctx) error {
	view, err := h.Sharing.AccessFolderByToken(c.Params("token"), time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}

func (h *SharingHandler) AccessFile(c *fiber.Ctx) error {
	file, reader, err := h.Sharing.AccessFileByToken(c.Context(), c.Params("token"), time.Now())
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	return c.SendStream(reader)
}

// UploadToFolder accepts an anonymous submission into a shared folder.
// Multipart fields: "file" and optional "name" identifying the submitter.
func (h *SharingHandler) UploadToFolder(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "missing file")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	file, err := h.Sharing.UploadByToken(c.Context(), c.Params("token"), time.Now(), services.TokenUploadInput{
		UploaderName: c.FormValue("name", "Anonymous"),
		Name:         fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Reader:       src,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, file)
}

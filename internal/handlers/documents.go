package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/pkg/logger"
	"github.com/staffdocs/backend/pkg/utils"
)

type DocumentHandler struct {
	Documents *services.DocumentService
	Mailer    *services.Mailer
}

func NewDocumentHandler(documents *services.DocumentService, mailer *services.Mailer) *DocumentHandler {
	return &DocumentHandler{Documents: documents, Mailer: mailer}
}

// Create accepts form data: metadata fields for template and editor
// documents, plus an optional "file" part which marks the document as an
// upload.
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	in := services.CreateDocumentInput{
		Type:         models.DocumentType(c.FormValue("type", string(models.DocumentTypeApproval))),
		Source:       models.DocumentSource(c.FormValue("source", string(models.DocumentSourceTemplate))),
		CompanyName:  c.FormValue("companyName"),
		CompanyAddr:  c.FormValue("companyAddress"),
		ContactName:  c.FormValue("contactName"),
		ContactEmail: c.FormValue("contactEmail"),
		ContactTitle: c.FormValue("contactTitle"),
		SalesRep:     c.FormValue("salesRep"),
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "unreadable file")
		}
		defer src.Close()

		in.FileName = fileHeader.Filename
		in.MimeType = fileHeader.Header.Get("Content-Type")
		in.Size = fileHeader.Size
		in.Reader = src
		in.Source = models.DocumentSourceUpload
	}

	if in.CompanyName == "" {
		return utils.Error(c, fiber.StatusBadRequest, "companyName is required")
	}

	doc, err := h.Documents.Create(c.Context(), user, tenantID, in)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, doc)
}

func (h *DocumentHandler) List(c *fiber.Ctx) error {
	user, tenantID, err := requestScope(c)
	if err != nil {
		return err
	}

	p := utils.ParsePagination(c)
	docs, total, err := h.Documents.List(user, tenantID, models.DocumentStatus(c.Query("status")), p)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Paginated(c, docs, p.Page, p.Limit, total)
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.Documents.Get(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, doc)
}

func (h *DocumentHandler) Approve(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.Documents.Approve(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Documents.Delete(c.Context(), user, id); err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// SendEmail mails the approved document to its contact using the
// caller's own SMTP identity.
func (h *DocumentHandler) SendEmail(c *fiber.Ctx) error {
	user, _, err := requestScope(c)
	if err != nil {
		return err
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return err
	}

	doc, err := h.Documents.Get(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	if doc.Status != models.DocumentApproved {
		return utils.Error(c, fiber.StatusBadRequest, "document is not approved")
	}
	if doc.ContactEmail == "" {
		return utils.Error(c, fiber.StatusBadRequest, "document has no contact email")
	}

	var attachments []services.Attachment
	if doc.PDFPath != "" {
		reader, _, err := h.Documents.Store.Download(c.Context(), doc.PDFPath)
		if err == nil {
			data, readErr := io.ReadAll(reader)
			reader.Close()
			if readErr == nil {
				attachments = append(attachments, services.Attachment{
					Filename:    fmt.Sprintf("%s.pdf", doc.CompanyName),
					ContentType: "application/pdf",
					Data:        data,
				})
			}
		}
	}

	msg := services.Message{
		To:          []string{doc.ContactEmail},
		Subject:     fmt.Sprintf("Document for %s", doc.CompanyName),
		Body:        fmt.Sprintf("Dear %s,\n\nPlease find the document for %s attached.\n\nBest regards,\n%s %s", doc.ContactName, doc.CompanyName, user.FirstName, user.LastName),
		Attachments: attachments,
	}
	if err := h.Mailer.Send(user, msg); err != nil {
		if err == services.ErrNoSMTPCredentials {
			return utils.Error(c, fiber.StatusBadRequest, "no smtp credentials configured")
		}
		logger.ErrorWithUser(user.ID.String(), "document_email_failed", err, map[string]interface{}{
			"documentID": doc.ID.String(),
		})
		return utils.Error(c, fiber.StatusBadGateway, "failed to send email")
	}

	doc, err = h.Documents.MarkEmailSent(user, id)
	if err != nil {
		return serviceError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, doc)
}

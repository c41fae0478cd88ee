package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/storage"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/gorm"
)

// DocumentService manages the contract paperwork pipeline. Documents are
// tenant-scoped like everything else but have no personal partition; any
// member can see them and management approves them.
type DocumentService struct {
	DB     *gorm.DB
	Store  storage.ObjectStore
	Notify *NotificationService
}

func NewDocumentService(db *gorm.DB, store storage.ObjectStore, notify *NotificationService) *DocumentService {
	return &DocumentService{DB: db, Store: store, Notify: notify}
}

type CreateDocumentInput struct {
	Type         models.DocumentType
	Source       models.DocumentSource
	CompanyName  string
	CompanyAddr  string
	ContactName  string
	ContactEmail string
	ContactTitle string
	SalesRep     string
	FileName     string
	MimeType     string
	Size         int64
	Reader       io.Reader
}

func (s *DocumentService) Create(ctx context.Context, user *models.User, tenantID uuid.UUID, in CreateDocumentInput) (*models.Document, error) {
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	doc := models.Document{
		TenantID:     tenantID,
		Type:         in.Type,
		Source:       in.Source,
		Status:       models.DocumentPending,
		CompanyName:  in.CompanyName,
		CompanyAddr:  in.CompanyAddr,
		ContactName:  in.ContactName,
		ContactEmail: in.ContactEmail,
		ContactTitle: in.ContactTitle,
		SalesRep:     in.SalesRep,
		CreatedByID:  user.ID,
	}

	if in.Reader != nil {
		if err := validateName(in.FileName); err != nil {
			return nil, err
		}
		path := fmt.Sprintf("%s/documents/%s/%s", tenantID, uuid.New(), in.FileName)
		if err := s.Store.Upload(ctx, path, in.Reader, in.Size, in.MimeType); err != nil {
			return nil, &StorageError{Op: "upload", Err: err}
		}
		doc.WordPath = path
	}

	if err := s.DB.Create(&doc).Error; err != nil {
		if doc.WordPath != "" {
			_ = s.Store.Delete(ctx, doc.WordPath)
		}
		return nil, err
	}
	return &doc, nil
}

func (s *DocumentService) Get(user *models.User, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := s.DB.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.MemberOf(doc.TenantID) {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *DocumentService) List(user *models.User, tenantID uuid.UUID, status models.DocumentStatus, p utils.PaginationParams) ([]models.Document, int64, error) {
	if !user.MemberOf(tenantID) {
		return nil, 0, ErrNotFound
	}

	query := s.DB.Model(&models.Document{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []models.Document
	if err := utils.ApplyPagination(query, p).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Approve moves a pending document to approved and notifies its author.
// Management roles only; approval is idempotent.
func (s *DocumentService) Approve(user *models.User, id uuid.UUID) (*models.Document, error) {
	doc, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if !user.HasManagementRole() {
		return nil, ErrUnauthorized
	}
	if doc.Status == models.DocumentApproved {
		return doc, nil
	}

	doc.Status = models.DocumentApproved
	doc.ApprovedByID = &user.ID
	if err := s.DB.Model(doc).Updates(map[string]interface{}{
		"status":         models.DocumentApproved,
		"approved_by_id": user.ID,
	}).Error; err != nil {
		return nil, err
	}

	if s.Notify != nil {
		s.Notify.Push(doc.TenantID, doc.CreatedByID, models.NotificationDocumentApproved,
			fmt.Sprintf("Document for %s was approved", doc.CompanyName))
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	doc, err := s.Get(user, id)
	if err != nil {
		return err
	}
	if doc.CreatedByID != user.ID && !user.HasManagementRole() {
		return ErrUnauthorized
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, path := range []string{doc.WordPath, doc.PDFPath} {
			if path == "" {
				continue
			}
			if err := s.Store.Delete(ctx, path); err != nil {
				return &StorageError{Op: "delete", Err: err}
			}
		}
		return tx.Delete(doc).Error
	})
}

// MarkEmailSent records that the document went out to the contact.
func (s *DocumentService) MarkEmailSent(user *models.User, id uuid.UUID) (*models.Document, error) {
	doc, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}

	doc.EmailSent = true
	if err := s.DB.Model(doc).Update("email_sent", true).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

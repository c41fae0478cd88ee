package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/storage"
	"gorm.io/gorm"
)

type FileService struct {
	DB    *gorm.DB
	Store storage.ObjectStore
	Guard Guard
}

func NewFileService(db *gorm.DB, store storage.ObjectStore) *FileService {
	return &FileService{DB: db, Store: store}
}

func (s *FileService) Get(user *models.User, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.DB.First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.Guard.CanReadFile(user, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

type UploadInput struct {
	FolderID   *uuid.UUID
	Visibility models.Visibility
	Name       string
	MimeType   string
	Size       int64
	Reader     io.Reader
}

// Upload stores the object first and writes the row second. If the row
// write fails the object is removed again so storage never leaks blobs.
func (s *FileService) Upload(ctx context.Context, user *models.User, tenantID uuid.UUID, in UploadInput) (*models.File, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	visibility := in.Visibility
	if in.FolderID != nil {
		var folder models.Folder
		if err := s.DB.First(&folder, "id = ? AND tenant_id = ?", *in.FolderID, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		if err := s.Guard.CanUploadInto(user, &folder); err != nil {
			return nil, ErrInvalidParent
		}
		// Files inherit the visibility of their containing folder.
		visibility = folder.Visibility
	}
	if !visibility.Valid() {
		return nil, ErrVisibilityMismatch
	}

	file := models.File{
		TenantID:     tenantID,
		FolderID:     in.FolderID,
		UploadedByID: &user.ID,
		OriginalName: in.Name,
		MimeType:     in.MimeType,
		Size:         in.Size,
		Visibility:   visibility,
	}
	file.StoragePath = objectPath(tenantID, &file)

	if err := s.Store.Upload(ctx, file.StoragePath, in.Reader, in.Size, in.MimeType); err != nil {
		return nil, &StorageError{Op: "upload", Err: err}
	}

	if err := s.DB.Create(&file).Error; err != nil {
		_ = s.Store.Delete(ctx, file.StoragePath)
		return nil, err
	}

	return &file, nil
}

func (s *FileService) Rename(user *models.User, id uuid.UUID, name string) (*models.File, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	file, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFile(user, file); err != nil {
		return nil, err
	}

	if err := s.DB.Model(file).Update("original_name", name).Error; err != nil {
		return nil, err
	}
	file.OriginalName = name
	return file, nil
}

// Move relocates a file to another folder, or to the tree root when the
// destination is nil. Destination folder must match the file's tenant and
// visibility.
func (s *FileService) Move(user *models.User, id uuid.UUID, folderID *uuid.UUID) (*models.File, error) {
	file, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFile(user, file); err != nil {
		return nil, err
	}

	if folderID != nil {
		var dest models.Folder
		if err := s.DB.First(&dest, "id = ?", *folderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
		if dest.TenantID != file.TenantID {
			return nil, ErrTenantMismatch
		}
		if dest.Visibility != file.Visibility {
			return nil, ErrVisibilityMismatch
		}
		if err := s.Guard.CanReadFolder(user, &dest); err != nil {
			return nil, ErrInvalidParent
		}
	}

	if err := s.DB.Model(file).Update("folder_id", folderID).Error; err != nil {
		return nil, err
	}
	file.FolderID = folderID
	return file, nil
}

func (s *FileService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	file, err := s.Get(user, id)
	if err != nil {
		return err
	}
	if err := s.Guard.CanModifyFile(user, file); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Store.Delete(ctx, file.StoragePath); err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
		return tx.Delete(file).Error
	})
}

// Download opens the stored object for streaming. Read access only.
func (s *FileService) Download(ctx context.Context, user *models.User, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, err := s.Get(user, id)
	if err != nil {
		return nil, nil, err
	}

	reader, _, err := s.Store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, &StorageError{Op: "download", Err: err}
	}
	return file, reader, nil
}

func objectPath(tenantID uuid.UUID, file *models.File) string {
	return fmt.Sprintf("%s/%s/%s", tenantID, uuid.New(), file.OriginalName)
}

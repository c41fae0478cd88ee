package services

import (
	"context"
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/storage"
	"gorm.io/gorm"
)

// namePattern matches word characters, spaces, hyphens, dots and
// parentheses. Slashes and other path metacharacters are rejected
// outright.
var namePattern = regexp.MustCompile(`^[\w\s\-.()]+$`)

func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, 255),
		validation.Match(namePattern),
	)
	if err != nil {
		return ErrInvalidName
	}
	return nil
}

type FolderService struct {
	DB    *gorm.DB
	Store storage.ObjectStore
	Guard Guard
}

func NewFolderService(db *gorm.DB, store storage.ObjectStore) *FolderService {
	return &FolderService{DB: db, Store: store}
}

// Get loads a folder and applies the read guard. Missing rows and rows
// the caller must not see are indistinguishable to the caller.
func (s *FolderService) Get(user *models.User, id uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	if err := s.DB.First(&folder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.Guard.CanReadFolder(user, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

type CreateFolderInput struct {
	Name       string
	ParentID   *uuid.UUID
	Visibility models.Visibility
}

func (s *FolderService) Create(user *models.User, tenantID uuid.UUID, in CreateFolderInput) (*models.Folder, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if !in.Visibility.Valid() {
		return nil, ErrVisibilityMismatch
	}
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	folder := models.Folder{
		TenantID:    tenantID,
		Name:        in.Name,
		ParentID:    in.ParentID,
		CreatedByID: user.ID,
		Visibility:  in.Visibility,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if in.ParentID != nil {
			parent, err := s.parentInScope(tx, tenantID, *in.ParentID, in.Visibility)
			if err != nil {
				return err
			}
			if err := s.Guard.CanReadFolder(user, parent); err != nil {
				return ErrInvalidParent
			}
		}
		if err := s.checkDuplicate(tx, tenantID, in.ParentID, in.Visibility, in.Name, nil); err != nil {
			return err
		}
		return tx.Create(&folder).Error
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (s *FolderService) Rename(user *models.User, id uuid.UUID, name string) (*models.Folder, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	folder, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFolder(user, folder); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.checkDuplicate(tx, folder.TenantID, folder.ParentID, folder.Visibility, name, &folder.ID); err != nil {
			return err
		}
		return tx.Model(folder).Update("name", name).Error
	})
	if err != nil {
		return nil, err
	}
	folder.Name = name
	return folder, nil
}

// Move reparents a folder within the same tenant and visibility. A nil
// destination moves the folder to the root of its tree. Moving under a
// descendant is rejected to keep the forest acyclic.
func (s *FolderService) Move(user *models.User, id uuid.UUID, newParentID *uuid.UUID) (*models.Folder, error) {
	folder, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFolder(user, folder); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if newParentID != nil {
			if *newParentID == folder.ID {
				return ErrInvalidCycle
			}
			var dest models.Folder
			if err := tx.First(&dest, "id = ?", *newParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidParent
				}
				return err
			}
			if dest.TenantID != folder.TenantID {
				return ErrTenantMismatch
			}
			if dest.Visibility != folder.Visibility {
				return ErrVisibilityMismatch
			}
			if err := s.Guard.CanReadFolder(user, &dest); err != nil {
				return ErrInvalidParent
			}
			descendant, err := isDescendant(tx, folder.ID, dest.ID)
			if err != nil {
				return err
			}
			if descendant {
				return ErrInvalidCycle
			}
		}
		if err := s.checkDuplicate(tx, folder.TenantID, newParentID, folder.Visibility, folder.Name, &folder.ID); err != nil {
			return err
		}
		return tx.Model(folder).Update("parent_id", newParentID).Error
	})
	if err != nil {
		return nil, err
	}
	folder.ParentID = newParentID
	return folder, nil
}

// Delete removes a folder, its entire subtree and all contained files in
// one transaction. Object deletions run inside the transaction so a
// storage fault rolls the rows back and nothing dangles.
func (s *FolderService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	folder, err := s.Get(user, id)
	if err != nil {
		return err
	}
	if err := s.Guard.CanModifyFolder(user, folder); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.deleteTree(ctx, tx, folder.ID)
	})
}

func (s *FolderService) deleteTree(ctx context.Context, tx *gorm.DB, folderID uuid.UUID) error {
	var children []models.Folder
	if err := tx.Where("parent_id = ?", folderID).Find(&children).Error; err != nil {
		return err
	}
	for i := range children {
		if err := s.deleteTree(ctx, tx, children[i].ID); err != nil {
			return err
		}
	}

	var files []models.File
	if err := tx.Where("folder_id = ?", folderID).Find(&files).Error; err != nil {
		return err
	}
	for i := range files {
		if err := s.Store.Delete(ctx, files[i].StoragePath); err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
		if err := tx.Delete(&files[i]).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&models.Folder{}, "id = ?", folderID).Error
}

// FolderListing is one level of a tenant's folder tree.
type FolderListing struct {
	Folder     *models.Folder  `json:"folder,omitempty"`
	Subfolders []models.Folder `json:"subfolders"`
	Files      []models.File   `json:"files"`
}

// ListChildren returns the direct children of a folder, or the roots of
// the given visibility when folderID is nil. Personal listings are pinned
// to the caller's own tree. Results come back oldest first.
func (s *FolderService) ListChildren(user *models.User, tenantID uuid.UUID, folderID *uuid.UUID, visibility models.Visibility) (*FolderListing, error) {
	if !visibility.Valid() {
		return nil, ErrVisibilityMismatch
	}
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	listing := &FolderListing{
		Subfolders: []models.Folder{},
		Files:      []models.File{},
	}

	if folderID != nil {
		folder, err := s.Get(user, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.Visibility != visibility {
			return nil, ErrVisibilityMismatch
		}
		listing.Folder = folder
	}

	folderQuery := s.DB.Where("tenant_id = ? AND visibility = ?", tenantID, visibility)
	fileQuery := s.DB.Where("tenant_id = ? AND visibility = ?", tenantID, visibility)
	if folderID == nil {
		folderQuery = folderQuery.Where("parent_id IS NULL")
		fileQuery = fileQuery.Where("folder_id IS NULL")
	} else {
		folderQuery = folderQuery.Where("parent_id = ?", *folderID)
		fileQuery = fileQuery.Where("folder_id = ?", *folderID)
	}
	if visibility == models.VisibilityPersonal && !user.IsSuperuser() {
		folderQuery = folderQuery.Where("created_by_id = ?", user.ID)
		fileQuery = fileQuery.Where("uploaded_by_id = ?", user.ID)
	}

	if err := folderQuery.Order("created_at ASC").Find(&listing.Subfolders).Error; err != nil {
		return nil, err
	}
	if err := fileQuery.Order("created_at ASC").Find(&listing.Files).Error; err != nil {
		return nil, err
	}

	return listing, nil
}

func (s *FolderService) parentInScope(tx *gorm.DB, tenantID, parentID uuid.UUID, visibility models.Visibility) (*models.Folder, error) {
	var parent models.Folder
	err := tx.First(&parent, "id = ? AND tenant_id = ? AND visibility = ?", parentID, tenantID, visibility).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidParent
		}
		return nil, err
	}
	return &parent, nil
}

// checkDuplicate enforces name uniqueness among siblings, scoped by
// tenant, parent and visibility. Re-run inside the mutating transaction
// so concurrent creates cannot both pass.
func (s *FolderService) checkDuplicate(tx *gorm.DB, tenantID uuid.UUID, parentID *uuid.UUID, visibility models.Visibility, name string, excludeID *uuid.UUID) error {
	query := tx.Model(&models.Folder{}).
		Where("tenant_id = ? AND visibility = ? AND name = ?", tenantID, visibility, name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateName
	}
	return nil
}

// isDescendant walks up from candidate's ancestors looking for root.
func isDescendant(tx *gorm.DB, root, candidate uuid.UUID) (bool, error) {
	current := candidate
	for {
		var folder models.Folder
		if err := tx.Select("id", "parent_id").First(&folder, "id = ?", current).Error; err != nil {
			return false, err
		}
		if folder.ParentID == nil {
			return false, nil
		}
		if *folder.ParentID == root {
			return true, nil
		}
		current = *folder.ParentID
	}
}

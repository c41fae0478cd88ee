package services

import (
	"github.com/staffdocs/backend/internal/models"
)

// Guard centralizes every access decision over folders and files. All
// read and mutate paths go through it; token access is the one deliberate
// exception and is handled by SharingService.
type Guard struct{}

// CanReadFolder hides cross-tenant folders and other users' personal
// folders behind ErrNotFound. Within the tenant, public folders are
// readable by everyone.
func (g Guard) CanReadFolder(user *models.User, folder *models.Folder) error {
	if user.IsSuperuser() {
		return nil
	}
	if !user.MemberOf(folder.TenantID) {
		return ErrNotFound
	}
	if folder.Visibility == models.VisibilityPersonal && folder.CreatedByID != user.ID {
		return ErrNotFound
	}
	return nil
}

// CanModifyFolder layers a write check on top of the read check. Public
// folders accept writes from their creator or any management role; personal
// folders only ever from their creator.
func (g Guard) CanModifyFolder(user *models.User, folder *models.Folder) error {
	if err := g.CanReadFolder(user, folder); err != nil {
		return err
	}
	if user.IsSuperuser() {
		return nil
	}
	if folder.Visibility == models.VisibilityPersonal {
		// Read check already pinned personal folders to their creator.
		return nil
	}
	if folder.CreatedByID == user.ID || user.HasManagementRole() {
		return nil
	}
	return ErrUnauthorized
}

func (g Guard) CanReadFile(user *models.User, file *models.File) error {
	if user.IsSuperuser() {
		return nil
	}
	if !user.MemberOf(file.TenantID) {
		return ErrNotFound
	}
	if file.Visibility == models.VisibilityPersonal {
		if file.UploadedByID == nil || *file.UploadedByID != user.ID {
			return ErrNotFound
		}
	}
	return nil
}

func (g Guard) CanModifyFile(user *models.User, file *models.File) error {
	if err := g.CanReadFile(user, file); err != nil {
		return err
	}
	if user.IsSuperuser() {
		return nil
	}
	if file.Visibility == models.VisibilityPersonal {
		return nil
	}
	if file.UploadedByID != nil && *file.UploadedByID == user.ID {
		return nil
	}
	if user.HasManagementRole() {
		return nil
	}
	return ErrUnauthorized
}

// CanUploadInto requires read access to the destination folder. Uploading
// is not a modification of the folder row, so staff may add files to any
// public folder they can see.
func (g Guard) CanUploadInto(user *models.User, folder *models.Folder) error {
	return g.CanReadFolder(user, folder)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/storage"
	"gorm.io/gorm"
)

// SharingService manages time-bounded token grants on folders and files.
// Token access deliberately bypasses the Guard: a valid, unexpired token
// is the whole credential. Everything else about a grant stays fail-closed.
type SharingService struct {
	DB     *gorm.DB
	Store  storage.ObjectStore
	Guard  Guard
	Notify *NotificationService
}

func NewSharingService(db *gorm.DB, store storage.ObjectStore) *SharingService {
	return &SharingService{DB: db, Store: store}
}

// ShareOptions controls one grant. EndTime nil means the grant stays
// active until explicitly revoked. Subfolders and Files select recursive
// propagation; the flags are recorded on the folder and later honored by
// token access.
type ShareOptions struct {
	EndTime    *time.Time
	Subfolders bool
	Files      bool
}

// ShareFolder activates a grant on the folder and, per the options,
// propagates it through the subtree as it exists right now. Content added
// after the share is not retroactively shared. Sharing an already shared
// folder refreshes the window and flags; the token is minted once and
// reused.
func (s *SharingService) ShareFolder(user *models.User, id uuid.UUID, opts ShareOptions) (*models.Folder, error) {
	folder, err := s.getFolder(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFolder(user, folder); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		applyShare(&folder.ShareState, user.ID, now, opts.EndTime)
		folder.ShareSubfolders = opts.Subfolders
		folder.ShareFiles = opts.Files
		if err := tx.Save(folder).Error; err != nil {
			return err
		}
		return s.propagateShare(tx, folder.ID, user.ID, now, opts)
	})
	if err != nil {
		return nil, err
	}

	// A management override sharing someone else's folder tells the
	// creator about it.
	if s.Notify != nil && folder.CreatedByID != user.ID {
		s.Notify.Push(folder.TenantID, folder.CreatedByID, models.NotificationFolderShared,
			fmt.Sprintf("Your folder %q was shared by %s %s", folder.Name, user.FirstName, user.LastName))
	}
	return folder, nil
}

// UnshareFolder revokes the grant on the folder and its subtree. The
// token is kept so a future re-share resolves to the same URL; revocation
// is in the IsShared flag, not the token. Unsharing an unshared folder is
// a no-op.
func (s *SharingService) UnshareFolder(user *models.User, id uuid.UUID) (*models.Folder, error) {
	folder, err := s.getFolder(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFolder(user, folder); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		folder.IsShared = false
		if err := tx.Model(folder).Update("is_shared", false).Error; err != nil {
			return err
		}
		return s.propagateUnshare(tx, folder.ID)
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *SharingService) ShareFile(user *models.User, id uuid.UUID, endTime *time.Time) (*models.File, error) {
	file, err := s.getFile(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFile(user, file); err != nil {
		return nil, err
	}

	applyShare(&file.ShareState, user.ID, time.Now(), endTime)
	if err := s.DB.Save(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

func (s *SharingService) UnshareFile(user *models.User, id uuid.UUID) (*models.File, error) {
	file, err := s.getFile(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFile(user, file); err != nil {
		return nil, err
	}

	file.IsShared = false
	if err := s.DB.Model(file).Update("is_shared", false).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// RegenerateFolderToken replaces the token, invalidating every link that
// carried the old one. The grant window is untouched.
func (s *SharingService) RegenerateFolderToken(user *models.User, id uuid.UUID) (*models.Folder, error) {
	folder, err := s.getFolder(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFolder(user, folder); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	folder.ShareToken = &token
	if err := s.DB.Model(folder).Update("share_token", token).Error; err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *SharingService) RegenerateFileToken(user *models.User, id uuid.UUID) (*models.File, error) {
	file, err := s.getFile(user, id)
	if err != nil {
		return nil, err
	}
	if err := s.Guard.CanModifyFile(user, file); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	file.ShareToken = &token
	if err := s.DB.Model(file).Update("share_token", token).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// SharedFolderView is the read-only projection served to token holders.
// Children appear only when the corresponding propagation flag was set at
// share time, and only those that are themselves share-active.
type SharedFolderView struct {
	Folder     *models.Folder  `json:"folder"`
	Subfolders []models.Folder `json:"subfolders"`
	Files      []models.File   `json:"files"`
}

// AccessFolderByToken resolves a share link. Unknown tokens, revoked
// grants and expired windows all answer not-found; a token holder learns
// nothing about why access failed.
func (s *SharingService) AccessFolderByToken(token string, now time.Time) (*SharedFolderView, error) {
	var folder models.Folder
	if err := s.DB.First(&folder, "share_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !folder.ShareActive(now) {
		return nil, ErrNotFound
	}

	view := &SharedFolderView{
		Folder:     &folder,
		Subfolders: []models.Folder{},
		Files:      []models.File{},
	}

	if folder.ShareSubfolders {
		if err := s.DB.
			Where("parent_id = ? AND is_shared = ?", folder.ID, true).
			Order("created_at ASC").
			Find(&view.Subfolders).Error; err != nil {
			return nil, err
		}
		view.Subfolders = filterActiveFolders(view.Subfolders, now)
	}
	if folder.ShareFiles {
		if err := s.DB.
			Where("folder_id = ? AND is_shared = ?", folder.ID, true).
			Order("created_at ASC").
			Find(&view.Files).Error; err != nil {
			return nil, err
		}
		view.Files = filterActiveFiles(view.Files, now)
	}

	return view, nil
}

// AccessFileByToken resolves a file share link for download.
func (s *SharingService) AccessFileByToken(ctx context.Context, token string, now time.Time) (*models.File, io.ReadCloser, error) {
	var file models.File
	if err := s.DB.First(&file, "share_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !file.ShareActive(now) {
		return nil, nil, ErrNotFound
	}

	reader, _, err := s.Store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, &StorageError{Op: "download", Err: err}
	}
	return &file, reader, nil
}

type TokenUploadInput struct {
	UploaderName string
	Name         string
	MimeType     string
	Size         int64
	Reader       io.Reader
}

// UploadByToken accepts an anonymous submission into a share-active
// folder. The submitter identifies themselves with a free-text name; no
// account is involved and the Guard is not consulted. The file lands with
// the folder's visibility and is not itself shared.
func (s *SharingService) UploadByToken(ctx context.Context, token string, now time.Time, in TokenUploadInput) (*models.File, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}

	var folder models.Folder
	if err := s.DB.First(&folder, "share_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !folder.ShareActive(now) {
		return nil, ErrNotFound
	}

	file := models.File{
		TenantID:     folder.TenantID,
		FolderID:     &folder.ID,
		UploaderName: in.UploaderName,
		OriginalName: in.Name,
		MimeType:     in.MimeType,
		Size:         in.Size,
		Visibility:   folder.Visibility,
	}
	file.StoragePath = fmt.Sprintf("%s/%s/%s", folder.TenantID, uuid.New(), in.Name)

	if err := s.Store.Upload(ctx, file.StoragePath, in.Reader, in.Size, in.MimeType); err != nil {
		return nil, &StorageError{Op: "upload", Err: err}
	}
	if err := s.DB.Create(&file).Error; err != nil {
		_ = s.Store.Delete(ctx, file.StoragePath)
		return nil, err
	}

	return &file, nil
}

func (s *SharingService) getFolder(user *models.User, id uuid.UUID) (*models.Folder, error) {
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

func (s *SharingService) getFile(user *models.User, id uuid.UUID) (*models.File, error) {
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

// propagateShare walks the subtree and applies the grant to descendants
// selected by the options. Every touched row gets its own token so it is
// independently addressable.
func (s *SharingService) propagateShare(tx *gorm.DB, folderID uuid.UUID, sharedBy uuid.UUID, now time.Time, opts ShareOptions) error {
	if opts.Files {
		var files []models.File
		if err := tx.Where("folder_id = ?", folderID).Find(&files).Error; err != nil {
			return err
		}
		for i := range files {
			applyShare(&files[i].ShareState, sharedBy, now, opts.EndTime)
			if err := tx.Save(&files[i]).Error; err != nil {
				return err
			}
		}
	}

	if !opts.Subfolders {
		return nil
	}

	var children []models.Folder
	if err := tx.Where("parent_id = ?", folderID).Find(&children).Error; err != nil {
		return err
	}
	for i := range children {
		applyShare(&children[i].ShareState, sharedBy, now, opts.EndTime)
		children[i].ShareSubfolders = opts.Subfolders
		children[i].ShareFiles = opts.Files
		if err := tx.Save(&children[i]).Error; err != nil {
			return err
		}
		if err := s.propagateShare(tx, children[i].ID, sharedBy, now, opts); err != nil {
			return err
		}
	}
	return nil
}

func (s *SharingService) propagateUnshare(tx *gorm.DB, folderID uuid.UUID) error {
	if err := tx.Model(&models.File{}).
		Where("folder_id = ?", folderID).
		Update("is_shared", false).Error; err != nil {
		return err
	}

	var children []models.Folder
	if err := tx.Where("parent_id = ?", folderID).Find(&children).Error; err != nil {
		return err
	}
	for i := range children {
		if err := tx.Model(&children[i]).Update("is_shared", false).Error; err != nil {
			return err
		}
		if err := s.propagateUnshare(tx, children[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func applyShare(state *models.ShareState, sharedBy uuid.UUID, now time.Time, endTime *time.Time) {
	state.IsShared = true
	state.ShareTime = &now
	state.ShareTimeEnd = endTime
	state.SharedByID = &sharedBy
	if state.ShareToken == nil {
		token := uuid.NewString()
		state.ShareToken = &token
	}
}

func filterActiveFolders(folders []models.Folder, now time.Time) []models.Folder {
	active := folders[:0]
	for _, f := range folders {
		if f.ShareActive(now) {
			active = append(active, f)
		}
	}
	return active
}

func filterActiveFiles(files []models.File, now time.Time) []models.File {
	active := files[:0]
	for _, f := range files {
		if f.ShareActive(now) {
			active = append(active, f)
		}
	}
	return active
}

package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/staffdocs/backend/internal/models"
)

func TestShareFolder(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	sharing := NewSharingService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	t.Run("mints token on first share and keeps it", func(t *testing.T) {
		folder := createFolder(t, folders, user, tenant.ID, "Handbook", nil, models.VisibilityPublic)

		shared, err := sharing.ShareFolder(user, folder.ID, ShareOptions{})
		if err != nil {
			t.Fatalf("share: %v", err)
		}
		if shared.ShareToken == nil {
			t.Fatal("no token minted")
		}
		token := *shared.ShareToken

		unshared, err := sharing.UnshareFolder(user, folder.ID)
		if err != nil {
			t.Fatalf("unshare: %v", err)
		}
		if unshared.IsShared {
			t.Error("still shared")
		}
		if unshared.ShareToken == nil || *unshared.ShareToken != token {
			t.Error("token lost on unshare")
		}

		reshared, err := sharing.ShareFolder(user, folder.ID, ShareOptions{})
		if err != nil {
			t.Fatalf("reshare: %v", err)
		}
		if *reshared.ShareToken != token {
			t.Error("reshare minted a new token")
		}
	})

	t.Run("propagates to existing subtree only", func(t *testing.T) {
		root := createFolder(t, folders, user, tenant.ID, "Campaign", nil, models.VisibilityPublic)
		child := createFolder(t, folders, user, tenant.ID, "Assets", &root.ID, models.VisibilityPublic)
		uploadFile(t, files, user, tenant.ID, "brief.txt", &root.ID)

		if _, err := sharing.ShareFolder(user, root.ID, ShareOptions{Subfolders: true, Files: true}); err != nil {
			t.Fatalf("share: %v", err)
		}

		var reloaded models.Folder
		db.First(&reloaded, "id = ?", child.ID)
		if !reloaded.IsShared {
			t.Error("existing subfolder not shared")
		}

		// Content added after the share stays private.
		late := createFolder(t, folders, user, tenant.ID, "Late", &root.ID, models.VisibilityPublic)
		lateFile := uploadFile(t, files, user, tenant.ID, "late.txt", &root.ID)

		var lateReloaded models.Folder
		db.First(&lateReloaded, "id = ?", late.ID)
		if lateReloaded.IsShared {
			t.Error("post share subfolder leaked into grant")
		}
		var reloadedFile models.File
		db.First(&reloadedFile, "id = ?", lateFile.ID)
		if reloadedFile.IsShared {
			t.Error("post share file leaked into grant")
		}
	})

	t.Run("unshare propagates down", func(t *testing.T) {
		root := createFolder(t, folders, user, tenant.ID, "Temp", nil, models.VisibilityPublic)
		child := createFolder(t, folders, user, tenant.ID, "Inner", &root.ID, models.VisibilityPublic)
		f := uploadFile(t, files, user, tenant.ID, "temp.txt", &child.ID)

		if _, err := sharing.ShareFolder(user, root.ID, ShareOptions{Subfolders: true, Files: true}); err != nil {
			t.Fatalf("share: %v", err)
		}
		if _, err := sharing.UnshareFolder(user, root.ID); err != nil {
			t.Fatalf("unshare: %v", err)
		}

		var reloaded models.Folder
		db.First(&reloaded, "id = ?", child.ID)
		if reloaded.IsShared {
			t.Error("subfolder still shared")
		}
		var reloadedFile models.File
		db.First(&reloadedFile, "id = ?", f.ID)
		if reloadedFile.IsShared {
			t.Error("file still shared")
		}
	})

	t.Run("management share notifies the creator", func(t *testing.T) {
		notify := NewNotificationService(db)
		sharing.Notify = notify
		defer func() { sharing.Notify = nil }()

		folder := createFolder(t, folders, user, tenant.ID, "Managed", nil, models.VisibilityPublic)
		hr := createUser(t, db, tenant, models.UserRoleHR)
		if _, err := sharing.ShareFolder(hr, folder.ID, ShareOptions{}); err != nil {
			t.Fatalf("share: %v", err)
		}

		notifications, err := notify.ListForUser(user, true)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(notifications) != 1 || notifications[0].Kind != models.NotificationFolderShared {
			t.Errorf("notifications: %+v", notifications)
		}
	})

	t.Run("other staff cannot share someone's public folder", func(t *testing.T) {
		folder := createFolder(t, folders, user, tenant.ID, "Mine", nil, models.VisibilityPublic)
		other := createUser(t, db, tenant, models.UserRoleStaff)
		_, err := sharing.ShareFolder(other, folder.ID, ShareOptions{})
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("got %v, want ErrUnauthorized", err)
		}
	})
}

func TestAccessFolderByToken(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	sharing := NewSharingService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	now := time.Now()

	t.Run("unknown token answers not found", func(t *testing.T) {
		_, err := sharing.AccessFolderByToken("nope", now)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("revoked grant answers not found", func(t *testing.T) {
		folder := createFolder(t, folders, user, tenant.ID, "Revoked", nil, models.VisibilityPublic)
		shared, _ := sharing.ShareFolder(user, folder.ID, ShareOptions{})
		sharing.UnshareFolder(user, folder.ID)

		_, err := sharing.AccessFolderByToken(*shared.ShareToken, now)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("expired grant answers not found", func(t *testing.T) {
		folder := createFolder(t, folders, user, tenant.ID, "Expired", nil, models.VisibilityPublic)
		end := now.Add(time.Hour)
		shared, err := sharing.ShareFolder(user, folder.ID, ShareOptions{EndTime: &end})
		if err != nil {
			t.Fatalf("share: %v", err)
		}

		if _, err := sharing.AccessFolderByToken(*shared.ShareToken, now); err != nil {
			t.Errorf("access within window failed: %v", err)
		}
		_, err = sharing.AccessFolderByToken(*shared.ShareToken, now.Add(2*time.Hour))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound after expiry", err)
		}
	})

	t.Run("view honors propagation flags", func(t *testing.T) {
		root := createFolder(t, folders, user, tenant.ID, "Flagged", nil, models.VisibilityPublic)
		createFolder(t, folders, user, tenant.ID, "Sub", &root.ID, models.VisibilityPublic)
		uploadFile(t, files, user, tenant.ID, "doc.txt", &root.ID)

		shared, err := sharing.ShareFolder(user, root.ID, ShareOptions{Subfolders: true})
		if err != nil {
			t.Fatalf("share: %v", err)
		}

		view, err := sharing.AccessFolderByToken(*shared.ShareToken, now)
		if err != nil {
			t.Fatalf("access: %v", err)
		}
		if len(view.Subfolders) != 1 {
			t.Errorf("got %d subfolders, want 1", len(view.Subfolders))
		}
		if len(view.Files) != 0 {
			t.Errorf("files listed despite files flag off")
		}
	})

	t.Run("personal folders are token addressable", func(t *testing.T) {
		folder := createFolder(t, folders, user, tenant.ID, "My Notes", nil, models.VisibilityPersonal)
		shared, err := sharing.ShareFolder(user, folder.ID, ShareOptions{})
		if err != nil {
			t.Fatalf("share personal: %v", err)
		}
		if _, err := sharing.AccessFolderByToken(*shared.ShareToken, now); err != nil {
			t.Errorf("token access to personal folder failed: %v", err)
		}
	})
}

func TestShareFile(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	sharing := NewSharingService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	folder := createFolder(t, folders, user, tenant.ID, "Docs", nil, models.VisibilityPublic)
	file := uploadFile(t, files, user, tenant.ID, "report.txt", &folder.ID)

	t.Run("share and download by token", func(t *testing.T) {
		shared, err := sharing.ShareFile(user, file.ID, nil)
		if err != nil {
			t.Fatalf("share: %v", err)
		}

		got, reader, err := sharing.AccessFileByToken(context.Background(), *shared.ShareToken, time.Now())
		if err != nil {
			t.Fatalf("access: %v", err)
		}
		defer reader.Close()
		if got.ID != file.ID {
			t.Errorf("wrong file resolved")
		}
	})

	t.Run("regenerate invalidates old token", func(t *testing.T) {
		shared, _ := sharing.ShareFile(user, file.ID, nil)
		oldToken := *shared.ShareToken

		regenerated, err := sharing.RegenerateFileToken(user, file.ID)
		if err != nil {
			t.Fatalf("regenerate: %v", err)
		}
		if *regenerated.ShareToken == oldToken {
			t.Fatal("token unchanged")
		}

		_, _, err = sharing.AccessFileByToken(context.Background(), oldToken, time.Now())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("old token still works: %v", err)
		}
		if _, reader, err := sharing.AccessFileByToken(context.Background(), *regenerated.ShareToken, time.Now()); err != nil {
			t.Errorf("new token rejected: %v", err)
		} else {
			reader.Close()
		}
	})
}

func TestUploadByToken(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	folders := NewFolderService(db, store)
	sharing := NewSharingService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	folder := createFolder(t, folders, user, tenant.ID, "Dropbox", nil, models.VisibilityPublic)
	shared, err := sharing.ShareFolder(user, folder.ID, ShareOptions{})
	if err != nil {
		t.Fatalf("share: %v", err)
	}

	t.Run("anonymous upload lands in folder", func(t *testing.T) {
		file, err := sharing.UploadByToken(context.Background(), *shared.ShareToken, time.Now(), TokenUploadInput{
			UploaderName: "External Vendor",
			Name:         "invoice.txt",
			MimeType:     "text/plain",
			Size:         4,
			Reader:       bytes.NewReader([]byte("data")),
		})
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if file.UploadedByID != nil {
			t.Error("anonymous upload has an uploader id")
		}
		if file.UploaderName != "External Vendor" {
			t.Errorf("uploader name %q", file.UploaderName)
		}
		if file.TenantID != tenant.ID {
			t.Error("tenant not inherited from folder")
		}
		if file.Visibility != folder.Visibility {
			t.Error("visibility not inherited from folder")
		}
		if file.IsShared {
			t.Error("uploaded file must not itself be shared")
		}
	})

	t.Run("rejected after revocation", func(t *testing.T) {
		sharing.UnshareFolder(user, folder.ID)
		_, err := sharing.UploadByToken(context.Background(), *shared.ShareToken, time.Now(), TokenUploadInput{
			Name:     "late.txt",
			MimeType: "text/plain",
			Size:     1,
			Reader:   bytes.NewReader([]byte("x")),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

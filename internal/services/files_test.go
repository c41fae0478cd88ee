package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/staffdocs/backend/internal/models"
)

func TestFileUpload(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	t.Run("inherits folder visibility", func(t *testing.T) {
		personal := createFolder(t, folders, user, tenant.ID, "Notes", nil, models.VisibilityPersonal)
		file, err := files.Upload(context.Background(), user, tenant.ID, UploadInput{
			FolderID:   &personal.ID,
			Visibility: models.VisibilityPublic, // folder wins
			Name:       "note.txt",
			MimeType:   "text/plain",
			Size:       5,
			Reader:     bytes.NewReader([]byte("hello")),
		})
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if file.Visibility != models.VisibilityPersonal {
			t.Errorf("got %s, want personal", file.Visibility)
		}
	})

	t.Run("upload failure leaves no row", func(t *testing.T) {
		store.failUpload = true
		defer func() { store.failUpload = false }()

		_, err := files.Upload(context.Background(), user, tenant.ID, UploadInput{
			Visibility: models.VisibilityPublic,
			Name:       "doomed.txt",
			MimeType:   "text/plain",
			Size:       1,
			Reader:     bytes.NewReader([]byte("x")),
		})
		var storageErr *StorageError
		if !errors.As(err, &storageErr) {
			t.Fatalf("got %v, want StorageError", err)
		}

		var count int64
		db.Model(&models.File{}).Where("original_name = ?", "doomed.txt").Count(&count)
		if count != 0 {
			t.Error("row created despite storage failure")
		}
	})

	t.Run("rejects invalid name", func(t *testing.T) {
		_, err := files.Upload(context.Background(), user, tenant.ID, UploadInput{
			Visibility: models.VisibilityPublic,
			Name:       "../escape",
			MimeType:   "text/plain",
			Size:       1,
			Reader:     bytes.NewReader([]byte("x")),
		})
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("got %v, want ErrInvalidName", err)
		}
	})
}

func TestFileRename(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	files := NewFileService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	file := uploadFile(t, files, user, tenant.ID, "draft.docx", nil)

	t.Run("round trips punctuated names", func(t *testing.T) {
		renamed, err := files.Rename(user, file.ID, "Report (Final).docx")
		if err != nil {
			t.Fatalf("rename: %v", err)
		}
		var reloaded models.File
		db.First(&reloaded, "id = ?", file.ID)
		if reloaded.OriginalName != "Report (Final).docx" {
			t.Errorf("got %q", reloaded.OriginalName)
		}
		if renamed.OriginalName != reloaded.OriginalName {
			t.Error("return value and row disagree")
		}
	})

	t.Run("invalid names leave the row untouched", func(t *testing.T) {
		long := make([]byte, 300)
		for i := range long {
			long[i] = 'a'
		}
		for _, name := range []string{"", string(long)} {
			if _, err := files.Rename(user, file.ID, name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("name %q: got %v, want ErrInvalidName", name, err)
			}
		}
		var reloaded models.File
		db.First(&reloaded, "id = ?", file.ID)
		if reloaded.OriginalName != "Report (Final).docx" {
			t.Errorf("row mutated to %q", reloaded.OriginalName)
		}
	})
}

func TestFileMove(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	public := createFolder(t, folders, user, tenant.ID, "Public", nil, models.VisibilityPublic)
	file := uploadFile(t, files, user, tenant.ID, "doc.txt", &public.ID)

	t.Run("rejects cross visibility destination", func(t *testing.T) {
		personal := createFolder(t, folders, user, tenant.ID, "Personal", nil, models.VisibilityPersonal)
		_, err := files.Move(user, file.ID, &personal.ID)
		if !errors.Is(err, ErrVisibilityMismatch) {
			t.Errorf("got %v, want ErrVisibilityMismatch", err)
		}
	})

	t.Run("moves within visibility", func(t *testing.T) {
		other := createFolder(t, folders, user, tenant.ID, "Other", nil, models.VisibilityPublic)
		moved, err := files.Move(user, file.ID, &other.ID)
		if err != nil {
			t.Fatalf("move: %v", err)
		}
		if moved.FolderID == nil || *moved.FolderID != other.ID {
			t.Error("folder not updated")
		}
	})
}

func TestFileDownload(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	files := NewFileService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	file := uploadFile(t, files, user, tenant.ID, "data.txt", nil)

	got, reader, err := files.Download(context.Background(), user, file.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q", data)
	}
	if got.OriginalName != "data.txt" {
		t.Errorf("wrong file metadata")
	}
}

func TestFileDelete(t *testing.T) {
	db := setupDB(t)
	store := newMemStore()
	files := NewFileService(db, store)
	tenant := createTenant(t, db, "acme")
	user := createUser(t, db, tenant, models.UserRoleStaff)

	t.Run("removes row and object", func(t *testing.T) {
		file := uploadFile(t, files, user, tenant.ID, "gone.txt", nil)
		if err := files.Delete(context.Background(), user, file.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if store.count() != 0 {
			t.Error("object left in store")
		}
	})

	t.Run("cross tenant delete hidden and row untouched", func(t *testing.T) {
		file := uploadFile(t, files, user, tenant.ID, "q1.pdf", nil)
		other := createTenant(t, db, "globex")
		outsider := createUser(t, db, other, models.UserRoleStaff)

		if err := files.Delete(context.Background(), outsider, file.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
		var count int64
		db.Model(&models.File{}).Where("id = ?", file.ID).Count(&count)
		if count != 1 {
			t.Error("file deleted across the tenant boundary")
		}
	})

	t.Run("storage failure keeps the row", func(t *testing.T) {
		file := uploadFile(t, files, user, tenant.ID, "stuck.txt", nil)
		store.failDelete = true
		defer func() { store.failDelete = false }()

		err := files.Delete(context.Background(), user, file.ID)
		var storageErr *StorageError
		if !errors.As(err, &storageErr) {
			t.Fatalf("got %v, want StorageError", err)
		}

		var count int64
		db.Model(&models.File{}).Where("id = ?", file.ID).Count(&count)
		if count != 1 {
			t.Error("row lost despite rollback")
		}
	})
}

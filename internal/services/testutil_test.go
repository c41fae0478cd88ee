package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.TenantApplication{},
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.Document{},
		&models.Task{},
		&models.Event{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// memStore keeps objects in a map. failDelete and failUpload switch on
// fault injection for rollback tests.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failDelete bool
	failUpload bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Upload(_ context.Context, path string, reader io.Reader, _ int64, _ string) error {
	if s.failUpload {
		return errors.New("upload refused")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *memStore) Download(_ context.Context, path string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: int64(len(data))}, nil
}

func (s *memStore) Delete(_ context.Context, path string) error {
	if s.failDelete {
		return errors.New("delete refused")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func createTenant(t *testing.T, db *gorm.DB, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug + " Inc", Slug: slug}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func createUser(t *testing.T, db *gorm.DB, tenant *models.Tenant, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("%s@test.local", uuid.NewString()),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	if tenant != nil {
		user.TenantID = &tenant.ID
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createFolder(t *testing.T, svc *FolderService, user *models.User, tenantID uuid.UUID, name string, parentID *uuid.UUID, visibility models.Visibility) *models.Folder {
	t.Helper()
	folder, err := svc.Create(user, tenantID, CreateFolderInput{
		Name:       name,
		ParentID:   parentID,
		Visibility: visibility,
	})
	if err != nil {
		t.Fatalf("create folder %s: %v", name, err)
	}
	return folder
}

func uploadFile(t *testing.T, svc *FileService, user *models.User, tenantID uuid.UUID, name string, folderID *uuid.UUID) *models.File {
	t.Helper()
	file, err := svc.Upload(context.Background(), user, tenantID, UploadInput{
		FolderID:   folderID,
		Visibility: models.VisibilityPublic,
		Name:       name,
		MimeType:   "text/plain",
		Size:       5,
		Reader:     bytes.NewReader([]byte("hello")),
	})
	if err != nil {
		t.Fatalf("upload file %s: %v", name, err)
	}
	return file
}

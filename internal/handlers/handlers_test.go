package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/config"
	"github.com/staffdocs/backend/internal/middleware"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/internal/storage"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testRootDomain = "example.test"

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *fakeStore) Upload(_ context.Context, path string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *fakeStore) Download(_ context.Context, path string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Size: int64(len(data))}, nil
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
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

	store := &fakeStore{objects: map[string][]byte{}}
	notifications := services.NewNotificationService(db)
	userService := services.NewUserService(db)

	app := fiber.New()
	RegisterRoutes(app, Deps{
		DB: db,
		TenantResolver: &middleware.TenantResolver{
			DB:         db,
			RootDomain: testRootDomain,
		},
		Auth:          NewAuthHandler(userService),
		Tenants:       NewTenantHandler(services.NewTenantService(db)),
		Users:         NewUserHandler(userService),
		Folders:       NewFolderHandler(services.NewFolderService(db, store)),
		Files:         NewFileHandler(services.NewFileService(db, store)),
		Sharing:       NewSharingHandler(services.NewSharingService(db, store)),
		Documents:     NewDocumentHandler(services.NewDocumentService(db, store, notifications), services.NewMailer(config.SMTPConfig{})),
		Tasks:         NewTaskHandler(services.NewTaskService(db, notifications)),
		Events:        NewEventHandler(services.NewEventService(db, nil)),
		Notifications: NewNotificationHandler(notifications),
	})

	return &testEnv{app: app, db: db}
}

func (e *testEnv) createTenant(t *testing.T, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug + " Inc", Slug: slug}
	if err := e.db.Create(tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func (e *testEnv) createUser(t *testing.T, tenant *models.Tenant, role models.UserRole, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{
		Email:        fmt.Sprintf("%s-%s@test.local", role, tenant.Slug),
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		TenantID:     &tenant.ID,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) request(t *testing.T, method, path, host, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Host = host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("request failed: %s", envelope.Error)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestTenantResolution(t *testing.T) {
	env := setupApp(t)
	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, tenant, models.UserRoleStaff, "password123")
	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	t.Run("unknown subdomain answers 404", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/folders", "ghost."+testRootDomain, token, nil)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("status %d, want 404", resp.StatusCode)
		}
	})

	t.Run("numeric label answers 400", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/folders", "12345."+testRootDomain, token, nil)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("status %d, want 400", resp.StatusCode)
		}
	})

	t.Run("own subdomain resolves", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/folders", "acme."+testRootDomain, token, nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("status %d, want 200", resp.StatusCode)
		}
	})

	t.Run("foreign subdomain answers 403", func(t *testing.T) {
		env.createTenant(t, "globex")
		resp := env.request(t, fiber.MethodGet, "/api/folders", "globex."+testRootDomain, token, nil)
		if resp.StatusCode != fiber.StatusForbidden {
			t.Errorf("status %d, want 403", resp.StatusCode)
		}
	})

	t.Run("root domain has no tenant scope", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/folders", testRootDomain, token, nil)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("status %d, want 404", resp.StatusCode)
		}
	})
}

func TestLoginFlow(t *testing.T) {
	env := setupApp(t)
	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, tenant, models.UserRoleStaff, "password123")

	t.Run("valid credentials", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/auth/login", "acme."+testRootDomain, "", fiber.Map{
			"email":    user.Email,
			"password": "password123",
		})
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status %d, want 200", resp.StatusCode)
		}
		var data struct {
			Token string `json:"token"`
		}
		decodeData(t, resp, &data)
		if data.Token == "" {
			t.Error("no token returned")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/auth/login", "acme."+testRootDomain, "", fiber.Map{
			"email":    user.Email,
			"password": "nope",
		})
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("status %d, want 401", resp.StatusCode)
		}
	})

	t.Run("login on foreign subdomain rejected", func(t *testing.T) {
		env.createTenant(t, "globex")
		resp := env.request(t, fiber.MethodPost, "/api/auth/login", "globex."+testRootDomain, "", fiber.Map{
			"email":    user.Email,
			"password": "password123",
		})
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("status %d, want 401", resp.StatusCode)
		}
	})
}

func TestFolderEndpoints(t *testing.T) {
	env := setupApp(t)
	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, tenant, models.UserRoleStaff, "password123")
	token, _ := utils.GenerateToken(user)
	host := "acme." + testRootDomain

	var folder models.Folder

	t.Run("create", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/folders", host, token, fiber.Map{
			"name":       "Reports",
			"visibility": "public",
		})
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("status %d, want 201", resp.StatusCode)
		}
		decodeData(t, resp, &folder)
	})

	t.Run("duplicate create answers 400", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/folders", host, token, fiber.Map{
			"name":       "Reports",
			"visibility": "public",
		})
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("status %d, want 400", resp.StatusCode)
		}
	})

	t.Run("rename", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPut, "/api/folders/"+folder.ID.String()+"/rename", host, token, fiber.Map{
			"name": "Quarterly Reports",
		})
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("status %d, want 200", resp.StatusCode)
		}
	})

	t.Run("share and anonymous access", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/folders/"+folder.ID.String()+"/share", host, token, fiber.Map{})
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("share status %d", resp.StatusCode)
		}
		var data struct {
			ShareToken string `json:"shareToken"`
		}
		decodeData(t, resp, &data)
		if data.ShareToken == "" {
			t.Fatal("no share token")
		}

		// Anonymous, no bearer token.
		resp = env.request(t, fiber.MethodGet, "/api/shared/folders/"+data.ShareToken, host, "", nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("anonymous access status %d, want 200", resp.StatusCode)
		}

		// Anonymous upload through the share link.
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "upload.txt")
		part.Write([]byte("anon data"))
		writer.WriteField("name", "Visitor")
		writer.Close()

		req := httptest.NewRequest(fiber.MethodPost, "/api/shared/folders/"+data.ShareToken+"/files", body)
		req.Host = host
		req.Header.Set("Content-Type", writer.FormDataContentType())
		uploadResp, err := env.app.Test(req, -1)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if uploadResp.StatusCode != fiber.StatusCreated {
			t.Errorf("anonymous upload status %d, want 201", uploadResp.StatusCode)
		}
	})

	t.Run("unauthenticated folder access answers 401", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/folders", host, "", nil)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("status %d, want 401", resp.StatusCode)
		}
	})
}

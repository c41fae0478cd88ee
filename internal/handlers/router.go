package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/staffdocs/backend/internal/middleware"
	"gorm.io/gorm"
)

// Deps bundles everything route registration needs.
type Deps struct {
	DB             *gorm.DB
	TenantResolver *middleware.TenantResolver
	Auth           *AuthHandler
	Tenants        *TenantHandler
	Users          *UserHandler
	Folders        *FolderHandler
	Files          *FileHandler
	Sharing        *SharingHandler
	Documents      *DocumentHandler
	Tasks          *TaskHandler
	Events         *EventHandler
	Notifications  *NotificationHandler
}

func RegisterRoutes(app *fiber.App, d Deps) {
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())
	app.Use(d.TenantResolver.Resolve())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public surface. Token share routes carry their own credential.
	api.Post("/auth/login", d.Auth.Login)
	api.Post("/tenants/apply", d.Tenants.Apply)
	shared := api.Group("/shared")
	shared.Get("/folders/:token", d.Sharing.AccessFolder)
	shared.Post("/folders/:token/files", d.Sharing.UploadToFolder)
	shared.Get("/files/:token", d.Sharing.AccessFile)

	// Superuser surface, served on the root domain.
	admin := api.Group("/admin", middleware.RequireAuth(d.DB), middleware.SuperuserOnly())
	admin.Get("/tenants", d.Tenants.List)
	admin.Get("/applications", d.Tenants.ListApplications)
	admin.Post("/applications/:id/approve", d.Tenants.Approve)
	admin.Post("/applications/:id/reject", d.Tenants.Reject)

	// Tenant surface. Everything below requires a session on the
	// tenant's own subdomain.
	auth := api.Group("", middleware.RequireAuth(d.DB))
	auth.Get("/auth/me", d.Auth.Me)
	auth.Post("/auth/change-password", d.Auth.ChangePassword)
	auth.Get("/notifications", d.Notifications.List)
	auth.Post("/notifications/read-all", d.Notifications.MarkAllRead)
	auth.Post("/notifications/:id/read", d.Notifications.MarkRead)
	auth.Put("/profile", d.Users.UpdateProfile)
	auth.Put("/profile/smtp", d.Users.SetSMTPCredentials)

	tenant := auth.Group("", middleware.RequireTenant())

	tenant.Get("/users", d.Users.List)
	tenant.Post("/users", middleware.AdminOnly(), d.Users.Create)
	tenant.Get("/users/:id", d.Users.Get)
	tenant.Delete("/users/:id", middleware.AdminOnly(), d.Users.Delete)

	tenant.Get("/folders", d.Folders.List)
	tenant.Post("/folders", d.Folders.Create)
	tenant.Get("/folders/:id", d.Folders.Get)
	tenant.Put("/folders/:id/rename", d.Folders.Rename)
	tenant.Put("/folders/:id/move", d.Folders.Move)
	tenant.Delete("/folders/:id", d.Folders.Delete)
	tenant.Post("/folders/:id/share", d.Sharing.ShareFolder)
	tenant.Post("/folders/:id/unshare", d.Sharing.UnshareFolder)
	tenant.Post("/folders/:id/share/regenerate", d.Sharing.RegenerateFolderToken)

	tenant.Post("/files", d.Files.Upload)
	tenant.Get("/files/:id/download", d.Files.Download)
	tenant.Put("/files/:id/rename", d.Files.Rename)
	tenant.Put("/files/:id/move", d.Files.Move)
	tenant.Delete("/files/:id", d.Files.Delete)
	tenant.Post("/files/:id/share", d.Sharing.ShareFile)
	tenant.Post("/files/:id/unshare", d.Sharing.UnshareFile)
	tenant.Post("/files/:id/share/regenerate", d.Sharing.RegenerateFileToken)

	tenant.Get("/documents", d.Documents.List)
	tenant.Post("/documents", d.Documents.Create)
	tenant.Get("/documents/:id", d.Documents.Get)
	tenant.Post("/documents/:id/approve", d.Documents.Approve)
	tenant.Post("/documents/:id/send", d.Documents.SendEmail)
	tenant.Delete("/documents/:id", d.Documents.Delete)

	tenant.Get("/tasks", d.Tasks.List)
	tenant.Post("/tasks", d.Tasks.Create)
	tenant.Put("/tasks/:id/status", d.Tasks.UpdateStatus)
	tenant.Delete("/tasks/:id", d.Tasks.Delete)

	tenant.Get("/events", d.Events.List)
	tenant.Post("/events", d.Events.Create)
	tenant.Delete("/events/:id", d.Events.Delete)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/staffdocs/backend/internal/config"
	"github.com/staffdocs/backend/internal/database"
	"github.com/staffdocs/backend/internal/handlers"
	"github.com/staffdocs/backend/internal/middleware"
	"github.com/staffdocs/backend/internal/services"
	"github.com/staffdocs/backend/internal/storage"
	"github.com/staffdocs/backend/pkg/logger"
	"github.com/staffdocs/backend/pkg/utils"
)

func main() {
	logger.Init()
	cfg := config.Load()

	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
	utils.ConfigureEncryption(cfg.JWT.Secret)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		logger.Error("database_connect_failed", err, nil)
		os.Exit(1)
	}

	store, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		logger.Error("storage_connect_failed", err, nil)
		os.Exit(1)
	}

	calendarClient, err := services.NewCalendarClient(context.Background(), cfg.Calendar)
	if err != nil {
		logger.Warn("calendar_init_failed", map[string]interface{}{"error": err.Error()})
	}

	notifications := services.NewNotificationService(db)
	userService := services.NewUserService(db)
	tenantService := services.NewTenantService(db)
	folderService := services.NewFolderService(db, store)
	fileService := services.NewFileService(db, store)
	sharingService := services.NewSharingService(db, store)
	sharingService.Notify = notifications
	documentService := services.NewDocumentService(db, store, notifications)
	taskService := services.NewTaskService(db, notifications)
	eventService := services.NewEventService(db, calendarClient)
	mailer := services.NewMailer(cfg.SMTP)

	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB: db,
		TenantResolver: &middleware.TenantResolver{
			DB:          db,
			RootDomain:  cfg.Tenant.RootDomain,
			DevFallback: cfg.Tenant.DevFallback,
		},
		Auth:          handlers.NewAuthHandler(userService),
		Tenants:       handlers.NewTenantHandler(tenantService),
		Users:         handlers.NewUserHandler(userService),
		Folders:       handlers.NewFolderHandler(folderService),
		Files:         handlers.NewFileHandler(fileService),
		Sharing:       handlers.NewSharingHandler(sharingService),
		Documents:     handlers.NewDocumentHandler(documentService, mailer),
		Tasks:         handlers.NewTaskHandler(taskService),
		Events:        handlers.NewEventHandler(eventService),
		Notifications: handlers.NewNotificationHandler(notifications),
	})

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.Error("server_failed", err, nil)
			os.Exit(1)
		}
	}()
	logger.Info("server_started", map[string]interface{}{"port": cfg.Server.Port})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server_stopping", nil)
	if err := app.Shutdown(); err != nil {
		logger.Error("server_shutdown_failed", err, nil)
	}
}

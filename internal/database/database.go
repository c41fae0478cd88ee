package database

import (
	"fmt"

	"github.com/staffdocs/backend/internal/config"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := seedSuperuser(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
}

// seedSuperuser creates the platform superuser on an empty database. The
// superuser carries no tenant and bypasses tenant scoping everywhere.
func seedSuperuser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	root := models.User{
		Email:        "root@staffdocs.local",
		PasswordHash: hash,
		FirstName:    "Platform",
		LastName:     "Admin",
		Role:         models.UserRoleSuperuser,
	}

	return db.Create(&root).Error
}

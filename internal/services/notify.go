package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/logger"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Push records a notification for a user. Best effort: a failed insert is
// logged and swallowed so it never fails the triggering operation.
func (s *NotificationService) Push(tenantID, userID uuid.UUID, kind models.NotificationKind, message string) {
	n := models.Notification{
		TenantID: tenantID,
		UserID:   userID,
		Kind:     kind,
		Message:  message,
	}
	if err := s.DB.Create(&n).Error; err != nil {
		logger.Warn("notification_push_failed", map[string]interface{}{
			"kind":  string(kind),
			"error": err.Error(),
		})
	}
}

// ListForUser returns the caller's notifications, newest first.
func (s *NotificationService) ListForUser(user *models.User, unreadOnly bool) ([]models.Notification, error) {
	query := s.DB.Where("user_id = ?", user.ID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(user *models.User, id uuid.UUID) error {
	var n models.Notification
	if err := s.DB.First(&n, "id = ? AND user_id = ?", id, user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Model(&n).Update("read", true).Error
}

func (s *NotificationService) MarkAllRead(user *models.User) error {
	return s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Update("read", true).Error
}

package models

import "github.com/google/uuid"

type NotificationKind string

const (
	NotificationTaskAssigned     NotificationKind = "task_assigned"
	NotificationDocumentApproved NotificationKind = "document_approved"
	NotificationFolderShared     NotificationKind = "folder_shared"
)

// Notification rows are best-effort: failure to create one never fails the
// operation that raised it.
type Notification struct {
	BaseModel
	TenantID uuid.UUID        `json:"tenantID" gorm:"type:uuid;not null;index"`
	UserID   uuid.UUID        `json:"userID" gorm:"type:uuid;not null;index"`
	Kind     NotificationKind `json:"kind" gorm:"type:varchar(30);not null"`
	Message  string           `json:"message" gorm:"type:text;not null"`
	Read     bool             `json:"read" gorm:"not null;default:false;index"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOnHold     TaskStatus = "on_hold"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskOnHold, TaskCancelled:
		return true
	}
	return false
}

type Task struct {
	BaseModel
	TenantID     uuid.UUID  `json:"tenantID" gorm:"type:uuid;not null;index"`
	Title        string     `json:"title" gorm:"type:varchar(255);not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Status       TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	FolderID     *uuid.UUID `json:"folderID,omitempty" gorm:"type:uuid"`
	AssignedToID *uuid.UUID `json:"assignedToID,omitempty" gorm:"type:uuid;index"`
	CreatedByID  uuid.UUID  `json:"createdByID" gorm:"type:uuid;not null;index"`

	Folder     *Folder `json:"folder,omitempty" gorm:"foreignKey:FolderID"`
	AssignedTo *User   `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID;references:ID"`
	CreatedBy  User    `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;references:ID"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	BaseModel
	TenantID    uuid.UUID `json:"tenantID" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	StartsAt    time.Time `json:"startsAt" gorm:"not null;index"`
	EndsAt      time.Time `json:"endsAt" gorm:"not null"`
	// MeetLink is filled by the calendar collaborator when configured;
	// event creation never fails on calendar errors.
	MeetLink    string    `json:"meetLink,omitempty" gorm:"type:text"`
	CreatedByID uuid.UUID `json:"createdByID" gorm:"type:uuid;not null;index"`

	CreatedBy User `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID;references:ID"`
}

package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"github.com/staffdocs/backend/pkg/logger"
	"gorm.io/gorm"
)

type EventService struct {
	DB       *gorm.DB
	Calendar *CalendarClient
}

func NewEventService(db *gorm.DB, cal *CalendarClient) *EventService {
	return &EventService{DB: db, Calendar: cal}
}

type CreateEventInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	WithMeet    bool
}

func (s *EventService) Create(user *models.User, tenantID uuid.UUID, in CreateEventInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, ErrInvalidName
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, ErrInvalidTimeRange
	}
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	event := models.Event{
		TenantID:    tenantID,
		Title:       in.Title,
		Description: in.Description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		CreatedByID: user.ID,
	}

	// Meet link creation is best effort. A calendar outage or disabled
	// integration still produces the event, just without a link.
	if in.WithMeet {
		link, err := s.Calendar.CreateMeetEvent(in.Title, in.Description, in.StartsAt, in.EndsAt)
		if err != nil && !errors.Is(err, ErrCalendarDisabled) {
			logger.ErrorWithUser(user.ID.String(), "event_meet_link_failed", err, map[string]interface{}{
				"title": in.Title,
			})
		}
		event.MeetLink = link
	}

	if err := s.DB.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns the tenant's events overlapping the given window, soonest
// first. Zero bounds list everything.
func (s *EventService) List(user *models.User, tenantID uuid.UUID, from, to time.Time) ([]models.Event, error) {
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	query := s.DB.Where("tenant_id = ?", tenantID)
	if !from.IsZero() {
		query = query.Where("ends_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("starts_at <= ?", to)
	}

	var events []models.Event
	if err := query.Order("starts_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventService) Delete(user *models.User, id uuid.UUID) error {
	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !user.MemberOf(event.TenantID) {
		return ErrNotFound
	}
	if event.CreatedByID != user.ID && !user.HasManagementRole() {
		return ErrUnauthorized
	}
	return s.DB.Delete(&event).Error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/config"
	"github.com/staffdocs/backend/pkg/logger"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarClient creates Google Calendar events with Meet conference
// links attached. Nil when no credentials are configured; callers treat a
// nil client as "Meet links disabled" rather than an error.
type CalendarClient struct {
	service    *calendar.Service
	calendarID string
}

func NewCalendarClient(ctx context.Context, cfg config.CalendarConfig) (*CalendarClient, error) {
	if cfg.CredentialsFile == "" {
		return nil, nil
	}

	service, err := calendar.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	return &CalendarClient{service: service, calendarID: cfg.CalendarID}, nil
}

var ErrCalendarDisabled = errors.New("calendar integration disabled")

// CreateMeetEvent inserts a calendar event requesting a Meet conference
// and returns the join link.
func (c *CalendarClient) CreateMeetEvent(title, description string, startsAt, endsAt time.Time) (string, error) {
	if c == nil {
		return "", ErrCalendarDisabled
	}

	event := &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: startsAt.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: endsAt.Format(time.RFC3339)},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := c.service.Events.
		Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		Do()
	if err != nil {
		return "", fmt.Errorf("calendar insert: %w", err)
	}

	if created.HangoutLink == "" {
		logger.Warn("calendar_no_meet_link", map[string]interface{}{
			"eventID": created.Id,
		})
	}
	return created.HangoutLink, nil
}

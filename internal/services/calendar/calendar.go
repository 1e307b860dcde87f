package calendar

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/ewhitmore/taskdeck/internal/models"
)

// Syncer mirrors scheduled tasks into an external calendar
type Syncer interface {
	SyncTask(ctx context.Context, task *models.Task) error
	RemoveTask(ctx context.Context, task *models.Task) error
}

// Service implements Syncer against the Google Calendar API
type Service struct {
	srv        *calendar.Service
	calendarID string
	log        *zap.Logger
}

// New creates a calendar service authenticated with a service account
// credentials file. calendarID may be "primary".
func New(ctx context.Context, credentialsFile, calendarID string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	srv, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Service{srv: srv, calendarID: calendarID, log: log}, nil
}

// SyncTask creates or updates the event mirroring the task. Repeated syncs of
// the same task converge on a single event keyed by the task id.
func (s *Service) SyncTask(ctx context.Context, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("cannot sync nil task")
	}
	if !task.Scheduled() {
		// Schedule was cleared since the job was enqueued
		return s.RemoveTask(ctx, task)
	}

	event, err := BuildEvent(task)
	if err != nil {
		return fmt.Errorf("failed to build event: %w", err)
	}

	existing, err := s.findEvent(ctx, task.ID.String())
	if err != nil {
		return fmt.Errorf("failed to search for event: %w", err)
	}

	if existing != nil {
		updated, err := s.srv.Events.Update(s.calendarID, existing.Id, event).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		s.log.Debug("calendar_event_updated",
			zap.String("task_id", task.ID.String()),
			zap.String("event_id", updated.Id))
		return nil
	}

	created, err := s.srv.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	s.log.Debug("calendar_event_created",
		zap.String("task_id", task.ID.String()),
		zap.String("event_id", created.Id))
	return nil
}

// RemoveTask deletes the event mirroring the task, if one exists
func (s *Service) RemoveTask(ctx context.Context, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("cannot remove nil task")
	}

	existing, err := s.findEvent(ctx, task.ID.String())
	if err != nil {
		return fmt.Errorf("failed to search for event: %w", err)
	}
	if existing == nil {
		return nil
	}

	if err := s.srv.Events.Delete(s.calendarID, existing.Id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.log.Debug("calendar_event_deleted",
		zap.String("task_id", task.ID.String()),
		zap.String("event_id", existing.Id))
	return nil
}

// findEvent looks up the event tagged with the task id
func (s *Service) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := s.srv.Events.List(s.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", taskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

var _ Syncer = (*Service)(nil)

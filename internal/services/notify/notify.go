package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ewhitmore/taskdeck/internal/models"
)

// Reminder delivers due-task reminders
type Reminder interface {
	SendReminder(ctx context.Context, task *models.Task) error
}

// reminderPayload is the body posted to the webhook
type reminderPayload struct {
	TaskID       string  `json:"task_id"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	ScheduleDate string  `json:"schedule_date"`
	ScheduleTime *string `json:"schedule_time,omitempty"`
	Message      string  `json:"message"`
}

// Webhook posts reminders to a configured HTTP endpoint
type Webhook struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewWebhook creates a webhook reminder sender
func NewWebhook(url string, log *zap.Logger) *Webhook {
	if log == nil {
		log = zap.NewNop()
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// SendReminder posts the reminder. Non-2xx responses are errors so the
// worker's retry policy applies.
func (w *Webhook) SendReminder(ctx context.Context, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("cannot send reminder for nil task")
	}
	if task.ScheduleDate == nil {
		// Schedule was cleared after the reminder was enqueued
		w.log.Debug("reminder_dropped_unscheduled", zap.String("task_id", task.ID.String()))
		return nil
	}
	if w.url == "" {
		w.log.Debug("reminder_skipped_no_webhook", zap.String("task_id", task.ID.String()))
		return nil
	}

	payload := reminderPayload{
		TaskID:       task.ID.String(),
		Name:         task.Name,
		Status:       string(task.Status),
		ScheduleDate: task.ScheduleDate.Format(time.RFC3339),
		ScheduleTime: task.ScheduleTime,
		Message:      fmt.Sprintf("%q is scheduled now", task.Name),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build reminder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver reminder: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reminder webhook returned %d", resp.StatusCode)
	}

	w.log.Debug("reminder_sent",
		zap.String("task_id", task.ID.String()),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

var _ Reminder = (*Webhook)(nil)

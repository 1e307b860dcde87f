package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewhitmore/taskdeck/internal/tasks"
)

// reminderWindow bounds how long a reminder job stays deliverable after its
// scheduled time. A reminder for a date that already passed a day ago is noise.
const reminderWindow = 24 * time.Hour

// Notifier publishes schedule-change work for the background worker: an
// immediate calendar sync job plus a reminder job delayed until the task's
// scheduled time.
type Notifier struct {
	queue JobQueue
	log   *zap.Logger
}

// NewNotifier creates a notifier publishing to the given queue
func NewNotifier(q JobQueue, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{queue: q, log: log}
}

// NotifyScheduleChanged enqueues the jobs for a task whose schedule changed
func (n *Notifier) NotifyScheduleChanged(ctx context.Context, taskID uuid.UUID, scheduleDate time.Time) error {
	syncJob := NewJob(JobTypeCalendarSync, taskID)
	if err := n.queue.Enqueue(ctx, syncJob); err != nil {
		return fmt.Errorf("failed to enqueue calendar sync: %w", err)
	}

	reminder := NewJob(JobTypeScheduleReminder, taskID)
	if scheduleDate.After(time.Now()) {
		reminder.NotBefore = &scheduleDate
	}
	expiry := scheduleDate.Add(reminderWindow)
	reminder.NotAfter = &expiry
	if reminder.IsExpired() {
		// Schedule moved into the distant past; sync the calendar but skip the reminder
		n.log.Debug("reminder_skipped_expired",
			zap.String("task_id", taskID.String()),
			zap.Time("schedule_date", scheduleDate))
		return nil
	}
	if err := n.queue.Enqueue(ctx, reminder); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	n.log.Debug("schedule_jobs_enqueued",
		zap.String("task_id", taskID.String()),
		zap.Time("schedule_date", scheduleDate))
	return nil
}

var _ tasks.ScheduleNotifier = (*Notifier)(nil)

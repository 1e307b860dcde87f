package workers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ewhitmore/taskdeck/internal/database"
	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/queue"
	"github.com/ewhitmore/taskdeck/internal/services/calendar"
	"github.com/ewhitmore/taskdeck/internal/services/notify"
)

// ScheduleSyncer processes calendar sync and reminder jobs
type ScheduleSyncer struct {
	taskRepo database.TaskRepositoryInterface
	calendar calendar.Syncer
	reminder notify.Reminder
}

// NewScheduleSyncer creates a new schedule syncer
func NewScheduleSyncer(
	taskRepo database.TaskRepositoryInterface,
	calendarSvc calendar.Syncer,
	reminder notify.Reminder,
) *ScheduleSyncer {
	return &ScheduleSyncer{
		taskRepo: taskRepo,
		calendar: calendarSvc,
		reminder: reminder,
	}
}

// ProcessCalendarSyncJob mirrors the task's schedule into the calendar
func (s *ScheduleSyncer) ProcessCalendarSyncJob(ctx context.Context, job *queue.Job) error {
	task, err := s.taskRepo.GetByID(ctx, job.TaskID)
	if errors.Is(err, database.ErrTaskNotFound) {
		// Task was deleted after the job was enqueued; clear any stale event
		log.Printf("Task %s gone, removing its calendar event", job.TaskID)
		return s.calendar.RemoveTask(ctx, &models.Task{ID: job.TaskID})
	}
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if err := s.calendar.SyncTask(ctx, task); err != nil {
		return fmt.Errorf("failed to sync calendar: %w", err)
	}

	log.Printf("Synced task %s to calendar (status=%s)", task.ID, task.Status)
	return nil
}

// ProcessScheduleReminderJob delivers the reminder for a due task
func (s *ScheduleSyncer) ProcessScheduleReminderJob(ctx context.Context, job *queue.Job) error {
	task, err := s.taskRepo.GetByID(ctx, job.TaskID)
	if errors.Is(err, database.ErrTaskNotFound) {
		log.Printf("Task %s gone, dropping reminder", job.TaskID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	if task.Status == models.StatusCompleted {
		// No point reminding about finished work
		log.Printf("Task %s already completed, dropping reminder", task.ID)
		return nil
	}

	if err := s.reminder.SendReminder(ctx, task); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	log.Printf("Sent reminder for task %s", task.ID)
	return nil
}

// ProcessJob processes a job based on its type
func (s *ScheduleSyncer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		if job.IsExpired() {
			log.Printf("Job %s expired (NotAfter: %v), dropping", job.ID, job.NotAfter)
			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack expired job: %v", ackErr)
			}
			return nil
		}
		log.Printf("Job %s not ready yet (NotBefore: %v), requeueing", job.ID, job.NotBefore)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to requeue early job: %v", nackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeCalendarSync:
		if err := s.ProcessCalendarSyncJob(ctx, job); err != nil {
			return s.handleJobError(msg, job, err, "calendar sync")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeScheduleReminder:
		if err := s.ProcessScheduleReminderJob(ctx, job); err != nil {
			return s.handleJobError(msg, job, err, "schedule reminder")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError applies the retry policy: requeue while retries remain,
// dead-letter afterwards
func (s *ScheduleSyncer) handleJobError(msg queue.MessageInterface, job *queue.Job, err error, jobType string) error {
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", jobType, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ
	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", jobType, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

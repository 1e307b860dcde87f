package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrMissingTaskID is returned when a subtask operation targets a task
	// that has no id. No persistence call is made.
	ErrMissingTaskID = errors.New("task id is missing")
	// ErrSubtaskNotFound is returned when an update targets a subtask id
	// not present in the task's collection.
	ErrSubtaskNotFound = errors.New("subtask not found")
)

// Store is the persistence collaborator. Save receives the complete task
// snapshot (never a partial patch) and returns the canonical stored task.
type Store interface {
	Save(ctx context.Context, task *models.Task) (*models.Task, error)
}

// ScheduleNotifier is the fire-and-forget calendar-sync collaborator,
// invoked only when a task carries a valid schedule date after
// normalization. Errors are logged, never propagated.
type ScheduleNotifier interface {
	NotifyScheduleChanged(ctx context.Context, taskID uuid.UUID, scheduleDate time.Time) error
}

// Coordinator turns local task mutations into single canonical writes.
// Every subtask mutation re-aggregates the parent task's status before the
// write, and writes for one task are serialized so they land in transition
// order.
type Coordinator struct {
	store    Store
	calendar ScheduleNotifier // optional
	queues   *queueSet
	log      *zap.Logger
}

// NewCoordinator creates a coordinator. calendar may be nil when calendar
// sync is not configured.
func NewCoordinator(store Store, calendar ScheduleNotifier, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		store:    store,
		calendar: calendar,
		queues:   newQueueSet(store),
		log:      log,
	}
}

// Close stops the per-task write queues.
func (c *Coordinator) Close() {
	c.queues.closeAll()
}

// AddSubtask assigns a fresh id to the partial subtask, fills its defaults,
// appends it, re-aggregates the task status and persists one snapshot.
func (c *Coordinator) AddSubtask(ctx context.Context, task *models.Task, partial models.Subtask) (*models.Task, error) {
	if task.ID == uuid.Nil {
		return nil, ErrMissingTaskID
	}

	sub := partial
	sub.ID = uuid.NewString()
	sub.FillDefaults()
	sub.Duration = sub.Duration.Clamped()

	updated := task.Clone()
	updated.Subtasks = append(updated.Subtasks, sub)
	updated.RefreshStatus()

	return c.UpdateTask(ctx, updated)
}

// UpdateSubtask replaces the subtask matching by id, re-aggregates the task
// status and persists one snapshot.
func (c *Coordinator) UpdateSubtask(ctx context.Context, task *models.Task, subtask models.Subtask) (*models.Task, error) {
	if task.ID == uuid.Nil {
		return nil, ErrMissingTaskID
	}

	updated := task.Clone()
	replaced := false
	for i := range updated.Subtasks {
		if updated.Subtasks[i].ID == subtask.ID {
			subtask.FillDefaults()
			subtask.Duration = subtask.Duration.Clamped()
			updated.Subtasks[i] = subtask
			replaced = true
			break
		}
	}
	if !replaced {
		return nil, ErrSubtaskNotFound
	}
	updated.RefreshStatus()

	return c.UpdateTask(ctx, updated)
}

// DeleteSubtask removes the subtask by id. A task without an id fails
// locally with no persistence call. Removing the last subtask skips
// aggregation so the task keeps its previous status.
func (c *Coordinator) DeleteSubtask(ctx context.Context, task *models.Task, subtaskID string) (*models.Task, error) {
	if task.ID == uuid.Nil {
		return nil, ErrMissingTaskID
	}

	updated := task.Clone()
	kept := updated.Subtasks[:0]
	for _, sub := range updated.Subtasks {
		if sub.ID != subtaskID {
			kept = append(kept, sub)
		}
	}
	updated.Subtasks = kept
	updated.RefreshStatus()

	return c.UpdateTask(ctx, updated)
}

// UpdateTask normalizes the task and issues one canonical write through the
// task's write queue. When a valid schedule date is present the calendar
// collaborator is notified as a fire-and-forget side effect.
func (c *Coordinator) UpdateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.ID == uuid.Nil {
		return nil, ErrMissingTaskID
	}

	normalized := task.Clone()
	normalizeSchedule(normalized)
	for i := range normalized.Subtasks {
		normalized.Subtasks[i].FillDefaults()
		normalized.Subtasks[i].Duration = normalized.Subtasks[i].Duration.Clamped()
	}

	saved, err := c.queues.forTask(normalized.ID).submit(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if c.calendar != nil && saved.ScheduleDate != nil {
		c.notifySchedule(saved.ID, *saved.ScheduleDate)
	}

	return saved, nil
}

// notifySchedule dispatches the calendar notification in the background.
// Failures never surface to the caller.
func (c *Coordinator) notifySchedule(taskID uuid.UUID, date time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.calendar.NotifyScheduleChanged(ctx, taskID, date); err != nil {
			c.log.Warn("calendar_sync_notify_failed",
				zap.String("task_id", taskID.String()),
				zap.Error(err),
			)
		}
	}()
}

// normalizeSchedule coerces an invalid schedule date to absent rather than
// erroring, matching the tolerant handling of user-entered dates.
func normalizeSchedule(task *models.Task) {
	if task.ScheduleDate != nil && task.ScheduleDate.IsZero() {
		task.ScheduleDate = nil
	}
	if task.ScheduleTime != nil && *task.ScheduleTime == "" {
		task.ScheduleTime = nil
	}
}

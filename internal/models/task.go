package models

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the status of a task or subtask
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// DefaultSubtaskName is used when a subtask is created without a name
const DefaultSubtaskName = "New Subtask"

// Subtask is a named, timed unit of work belonging to exactly one task.
// Duration holds the remaining countdown time once a timer has been started,
// not the original allotment.
type Subtask struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Duration Seconds `json:"duration"`
}

// FillDefaults fills missing subtask fields with their defaults.
func (s *Subtask) FillDefaults() {
	if s.Name == "" {
		s.Name = DefaultSubtaskName
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
}

// Task represents a task with its owned subtask collection.
// Status is a pure function of the subtasks whenever any exist; with zero
// subtasks it retains the last explicitly set value.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	Subtasks     []Subtask  `json:"subtasks"`
	ScheduleDate *time.Time `json:"scheduleDate,omitempty"`
	ScheduleTime *string    `json:"scheduleTime,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AggregateStatus derives a task status from its subtasks. Completion
// requires unanimity; progress requires only one active subtask. The boolean
// is false when the collection is empty and no aggregate applies.
func AggregateStatus(subtasks []Subtask) (Status, bool) {
	if len(subtasks) == 0 {
		return "", false
	}

	allCompleted := true
	anyInProgress := false
	for _, sub := range subtasks {
		if sub.Status != StatusCompleted {
			allCompleted = false
		}
		if sub.Status == StatusInProgress {
			anyInProgress = true
		}
	}

	if allCompleted {
		return StatusCompleted, true
	}
	if anyInProgress {
		return StatusInProgress, true
	}
	return StatusPending, true
}

// RefreshStatus recomputes the task status from its subtasks.
// With no subtasks the previous status is kept.
func (t *Task) RefreshStatus() {
	if status, ok := AggregateStatus(t.Subtasks); ok {
		t.Status = status
	}
}

// FindSubtask returns the subtask with the given id, or nil.
func (t *Task) FindSubtask(id string) *Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}

// Scheduled reports whether the task carries a schedule date.
// Tasks without one are shown in the "Anytime" view.
func (t *Task) Scheduled() bool {
	return t.ScheduleDate != nil
}

// Clone returns a deep copy of the task, including its subtask collection.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(clone.Subtasks, t.Subtasks)
	return &clone
}

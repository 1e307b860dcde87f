package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ewhitmore/taskdeck/internal/models"
)

func strPtr(s string) *string { return &s }

func TestBuildEvent(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	taskID := uuid.New()

	tests := []struct {
		name      string
		task      *models.Task
		wantStart string
		wantEnd   string
		allDay    bool
		wantErr   bool
	}{
		{
			name: "timed event sized by open subtask work",
			task: &models.Task{
				ID:           taskID,
				Name:         "Write report",
				ScheduleDate: &date,
				ScheduleTime: strPtr("09:30"),
				Subtasks: []models.Subtask{
					{ID: "s1", Status: models.StatusPending, Duration: 1800},
					{ID: "s2", Status: models.StatusCompleted, Duration: 3600},
				},
			},
			wantStart: "2026-04-02T09:30:00Z",
			wantEnd:   "2026-04-02T10:00:00Z",
		},
		{
			name: "no subtask work falls back to half hour",
			task: &models.Task{
				ID:           taskID,
				Name:         "Quick check",
				ScheduleDate: &date,
				ScheduleTime: strPtr("14:00"),
			},
			wantStart: "2026-04-02T14:00:00Z",
			wantEnd:   "2026-04-02T14:30:00Z",
		},
		{
			name: "no clock time yields all-day event",
			task: &models.Task{
				ID:           taskID,
				Name:         "Errand day",
				ScheduleDate: &date,
			},
			allDay: true,
		},
		{
			name: "unparseable clock time yields all-day event",
			task: &models.Task{
				ID:           taskID,
				Name:         "Someday",
				ScheduleDate: &date,
				ScheduleTime: strPtr("late afternoon"),
			},
			allDay: true,
		},
		{
			name:    "unscheduled task is an error",
			task:    &models.Task{ID: taskID, Name: "No date"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, err := BuildEvent(tt.task)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildEvent: %v", err)
			}

			if got := event.ExtendedProperties.Private[taskIDProperty]; got != taskID.String() {
				t.Errorf("task id property = %q, want %q", got, taskID)
			}

			if tt.allDay {
				if event.Start.Date != "2026-04-02" || event.Start.DateTime != "" {
					t.Errorf("expected all-day start, got %+v", event.Start)
				}
				return
			}
			if event.Start.DateTime != tt.wantStart {
				t.Errorf("start = %s, want %s", event.Start.DateTime, tt.wantStart)
			}
			if event.End.DateTime != tt.wantEnd {
				t.Errorf("end = %s, want %s", event.End.DateTime, tt.wantEnd)
			}
		})
	}
}

func TestBuildEventCompletedPrefix(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		ID:           uuid.New(),
		Name:         "Ship release",
		Status:       models.StatusCompleted,
		ScheduleDate: &date,
	}

	event, err := BuildEvent(task)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	if event.Summary != "✓ Ship release" {
		t.Errorf("summary = %q, want completion marker prefix", event.Summary)
	}
}

func TestBuildEventDescriptionIncludesOpenWork(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	task := &models.Task{
		ID:           uuid.New(),
		Name:         "Write report",
		Description:  "Quarterly numbers",
		ScheduleDate: &date,
		Subtasks: []models.Subtask{
			{ID: "s1", Status: models.StatusPending, Duration: 5400},
		},
	}

	event, err := BuildEvent(task)
	if err != nil {
		t.Fatalf("BuildEvent: %v", err)
	}
	want := "Quarterly numbers\n\nRemaining work: 1h 30m"
	if event.Description != want {
		t.Errorf("description = %q, want %q", event.Description, want)
	}
}

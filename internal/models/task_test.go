package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestAggregateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		statuses []Status
		want     Status
		applies  bool
	}{
		{"empty collection does not apply", nil, "", false},
		{"all completed", []Status{StatusCompleted, StatusCompleted}, StatusCompleted, true},
		{"single completed", []Status{StatusCompleted}, StatusCompleted, true},
		{"completion requires unanimity", []Status{StatusCompleted, StatusInProgress}, StatusInProgress, true},
		{"any in progress wins over pending", []Status{StatusPending, StatusInProgress}, StatusInProgress, true},
		{"all pending", []Status{StatusPending, StatusPending}, StatusPending, true},
		{"completed plus pending is pending", []Status{StatusCompleted, StatusPending}, StatusPending, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			subtasks := make([]Subtask, len(tt.statuses))
			for i, s := range tt.statuses {
				subtasks[i] = Subtask{ID: "s", Status: s}
			}
			got, ok := AggregateStatus(subtasks)
			if ok != tt.applies {
				t.Fatalf("AggregateStatus applies = %v, want %v", ok, tt.applies)
			}
			if ok && got != tt.want {
				t.Errorf("AggregateStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRefreshStatusKeepsPriorWhenEmpty(t *testing.T) {
	t.Parallel()

	task := &Task{ID: uuid.New(), Status: StatusInProgress}
	task.RefreshStatus()
	if task.Status != StatusInProgress {
		t.Errorf("expected prior status retained for empty subtasks, got %s", task.Status)
	}

	task.Subtasks = []Subtask{{ID: "s1", Status: StatusCompleted}}
	task.RefreshStatus()
	if task.Status != StatusCompleted {
		t.Errorf("expected COMPLETED after unanimous completion, got %s", task.Status)
	}
}

func TestSubtaskFillDefaults(t *testing.T) {
	t.Parallel()

	sub := Subtask{ID: "s1"}
	sub.FillDefaults()
	if sub.Name != DefaultSubtaskName {
		t.Errorf("expected default name %q, got %q", DefaultSubtaskName, sub.Name)
	}
	if sub.Status != StatusPending {
		t.Errorf("expected default status PENDING, got %s", sub.Status)
	}

	named := Subtask{ID: "s2", Name: "Write tests", Status: StatusInProgress}
	named.FillDefaults()
	if named.Name != "Write tests" || named.Status != StatusInProgress {
		t.Errorf("defaults must not overwrite existing fields: %+v", named)
	}
}

func TestSecondsJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Seconds
	}{
		{"string value", `"120"`, 120},
		{"bare number", `120`, 120},
		{"empty string", `""`, 0},
		{"garbage", `"abc"`, 0},
		{"clamped above max", `"99999"`, 10800},
		{"negative number", `-5`, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s Seconds
			if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if s != tt.want {
				t.Errorf("got %d, want %d", s, tt.want)
			}
		})
	}

	out, err := json.Marshal(Seconds(119))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"119"` {
		t.Errorf("marshal = %s, want \"119\"", out)
	}
}

func TestTaskCloneIsIndependent(t *testing.T) {
	t.Parallel()

	task := &Task{
		ID:       uuid.New(),
		Subtasks: []Subtask{{ID: "s1", Status: StatusPending, Duration: 120}},
	}
	clone := task.Clone()
	clone.Subtasks[0].Status = StatusCompleted

	if task.Subtasks[0].Status != StatusPending {
		t.Error("mutating the clone leaked into the original subtask collection")
	}
}

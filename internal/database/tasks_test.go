package database

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ewhitmore/taskdeck/internal/models"
)

// Note: Full integration testing of the repository requires a database.
// These tests focus on query construction and row decoding logic.
func TestListQuery(t *testing.T) {
	t.Parallel()

	t.Run("no filter", func(t *testing.T) {
		t.Parallel()
		query, args := listQuery(nil)
		if strings.Contains(query, "WHERE") {
			t.Errorf("unfiltered query must not have a WHERE clause: %s", query)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want none", args)
		}
		if !strings.Contains(query, "ORDER BY created_at DESC") {
			t.Error("tasks must list newest first")
		}
	})

	t.Run("status filter", func(t *testing.T) {
		t.Parallel()
		status := models.StatusInProgress
		query, args := listQuery(&status)
		if !strings.Contains(query, "WHERE status = $1") {
			t.Errorf("missing status filter: %s", query)
		}
		if len(args) != 1 || args[0] != "IN_PROGRESS" {
			t.Errorf("args = %v, want [IN_PROGRESS]", args)
		}
	})
}

func TestSubtasksOrEmpty(t *testing.T) {
	t.Parallel()

	encoded, err := json.Marshal(subtasksOrEmpty(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// A task without subtasks stores [] rather than null so JSONB operators
	// keep working against the column.
	if string(encoded) != "[]" {
		t.Errorf("nil subtasks encoded as %s, want []", encoded)
	}

	subtasks := []models.Subtask{{ID: "s1", Name: "write", Status: models.StatusPending, Duration: 300}}
	encoded, err = json.Marshal(subtasksOrEmpty(subtasks))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"duration":"300"`) {
		t.Errorf("duration must serialize as a string: %s", encoded)
	}
}

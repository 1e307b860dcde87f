package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/timer"
)

// TimerStateResponse describes a subtask countdown as seen by clients
type TimerStateResponse struct {
	SubtaskID string         `json:"subtask_id"`
	State     timer.State    `json:"state"`
	Remaining int            `json:"remaining"`
	Subtask   models.Subtask `json:"subtask"`
}

// TimerAction drives a subtask countdown: start, pause, reset, complete
// or extend
func (h *TaskHandler) TimerAction(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	subtaskID := vars["subtaskID"]
	action := vars["action"]

	sub := task.FindSubtask(subtaskID)
	if sub == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Subtask not found")
		return
	}

	switch action {
	case "start":
		cd := h.timers.Obtain(*sub, h.timerPersist(task.ID))
		// The decrement loop outlives the request, so it must not run on
		// the request context.
		if err := cd.Start(context.Background()); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to start timer")
			return
		}
		respondJSON(w, http.StatusOK, timerState(subtaskID, cd))
		return

	case "pause":
		cd, live := h.timers.Get(subtaskID)
		if !live {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No active timer for subtask")
			return
		}
		if err := cd.Pause(r.Context()); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to pause timer")
			return
		}
		respondJSON(w, http.StatusOK, timerState(subtaskID, cd))
		return

	case "reset":
		cd, live := h.timers.Get(subtaskID)
		if !live {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No active timer for subtask")
			return
		}
		if err := cd.Reset(r.Context()); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to reset timer")
			return
		}
		respondJSON(w, http.StatusOK, timerState(subtaskID, cd))
		return

	case "complete":
		found, err := h.timers.Complete(r.Context(), subtaskID)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete timer")
			return
		}
		if found {
			cd, _ := h.timers.Get(subtaskID)
			respondJSON(w, http.StatusOK, timerState(subtaskID, cd))
			return
		}
		// No live countdown; force the stored subtask to completed
		forced := *sub
		forced.Status = models.StatusCompleted
		forced.Duration = 0
		if _, err := h.coordinator.UpdateSubtask(r.Context(), task, forced); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete subtask")
			return
		}
		respondJSON(w, http.StatusOK, TimerStateResponse{
			SubtaskID: subtaskID,
			State:     timer.StateCompleted,
			Remaining: 0,
			Subtask:   forced,
		})
		return

	case "extend":
		found, err := h.timers.ExtendBy(r.Context(), subtaskID, timer.ExtendSeconds)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to extend timer")
			return
		}
		if !found {
			respondJSONError(w, http.StatusNotFound, "Not Found", "No active timer for subtask")
			return
		}
		cd, _ := h.timers.Get(subtaskID)
		respondJSON(w, http.StatusOK, timerState(subtaskID, cd))
		return

	default:
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Unknown timer action")
	}
}

// TimerState reports the countdown state for a subtask. Without a live
// countdown the state is derived from the stored subtask.
func (h *TaskHandler) TimerState(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	subtaskID := mux.Vars(r)["subtaskID"]

	sub := task.FindSubtask(subtaskID)
	if sub == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Subtask not found")
		return
	}

	if cd, live := h.timers.Get(subtaskID); live {
		respondJSON(w, http.StatusOK, timerState(subtaskID, cd))
		return
	}

	respondJSON(w, http.StatusOK, TimerStateResponse{
		SubtaskID: subtaskID,
		State:     storedState(sub.Status),
		Remaining: int(sub.Duration),
		Subtask:   *sub,
	})
}

// timerPersist builds the persist callback for a subtask countdown: fetch
// the task fresh and route the snapshot through the coordinator so timer
// writes share the per-task write queue with everything else.
func (h *TaskHandler) timerPersist(taskID uuid.UUID) timer.PersistFunc {
	return func(ctx context.Context, subtask models.Subtask) error {
		task, err := h.taskRepo.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		_, err = h.coordinator.UpdateSubtask(ctx, task, subtask)
		return err
	}
}

func timerState(subtaskID string, cd *timer.Countdown) TimerStateResponse {
	return TimerStateResponse{
		SubtaskID: subtaskID,
		State:     cd.State(),
		Remaining: cd.Remaining(),
		Subtask:   cd.Snapshot(),
	}
}

func storedState(status models.Status) timer.State {
	switch status {
	case models.StatusInProgress:
		return timer.StateRunning
	case models.StatusCompleted:
		return timer.StateCompleted
	default:
		return timer.StateIdle
	}
}

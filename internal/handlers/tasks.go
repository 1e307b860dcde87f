package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ewhitmore/taskdeck/internal/database"
	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/queue"
	"github.com/ewhitmore/taskdeck/internal/tasks"
	"github.com/ewhitmore/taskdeck/internal/timer"
	"github.com/ewhitmore/taskdeck/internal/validation"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo    database.TaskRepositoryInterface
	coordinator *tasks.Coordinator
	timers      *timer.Registry
	jobs        queue.JobQueue
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface, coordinator *tasks.Coordinator, timers *timer.Registry, jobs queue.JobQueue) *TaskHandler {
	return &TaskHandler{
		taskRepo:    taskRepo,
		coordinator: coordinator,
		timers:      timers,
		jobs:        jobs,
	}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix (e.g., from apiRouter.PathPrefix("/tasks"))
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/subtasks", h.AddSubtask).Methods("POST")
	r.HandleFunc("/{id}/subtasks/{subtaskID}", h.UpdateSubtask).Methods("PUT")
	r.HandleFunc("/{id}/subtasks/{subtaskID}", h.DeleteSubtask).Methods("DELETE")
	r.HandleFunc("/{id}/subtasks/{subtaskID}/timer/{action}", h.TimerAction).Methods("POST")
	r.HandleFunc("/{id}/subtasks/{subtaskID}/timer", h.TimerState).Methods("GET")
	r.HandleFunc("/{id}/sync-calendar", h.SyncCalendar).Methods("POST")
}

const (
	// MaxTaskNameLength is the maximum length for a task name
	MaxTaskNameLength = 255
	// MaxDescriptionLength is the maximum length for a task description
	MaxDescriptionLength = 10000
)

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Name         string           `json:"name" validate:"required,min=1,max=255"`
	Description  string           `json:"description" validate:"max=10000"`
	ScheduleDate *string          `json:"scheduleDate,omitempty"`
	ScheduleTime *string          `json:"scheduleTime,omitempty" validate:"omitempty,clock_time"`
	Subtasks     []models.Subtask `json:"subtasks,omitempty"`
}

// UpdateTaskRequest represents an update task request. Omitted fields keep
// their stored values; task status is always recomputed from the subtasks.
type UpdateTaskRequest struct {
	Name         *string           `json:"name,omitempty"`
	Description  *string           `json:"description,omitempty"`
	ScheduleDate *string           `json:"scheduleDate,omitempty"`
	ScheduleTime *string           `json:"scheduleTime,omitempty" validate:"omitempty,clock_time"`
	Subtasks     *[]models.Subtask `json:"subtasks,omitempty"`
}

// ListTasks lists tasks, optionally filtered by status
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var status *models.Status
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		sEnum := models.Status(s)
		status = &sEnum
	}

	taskList, err := h.taskRepo.List(ctx, status)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	respondJSON(w, http.StatusOK, taskList)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name is required and cannot be empty after sanitization")
		return
	}

	task := &models.Task{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  validation.SanitizeText(req.Description),
		Status:       models.StatusPending,
		Subtasks:     req.Subtasks,
		ScheduleDate: parseScheduleDate(req.ScheduleDate),
		ScheduleTime: req.ScheduleTime,
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == "" {
			task.Subtasks[i].ID = uuid.NewString()
		}
	}
	task.RefreshStatus()

	// The coordinator normalizes, fills subtask defaults and issues the
	// single canonical write (the repository save is an upsert).
	created, err := h.coordinator.UpdateTask(r.Context(), task)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if req.Name != nil {
		sanitized := validation.SanitizeText(*req.Name)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
			return
		}
		if len(sanitized) > MaxTaskNameLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Name exceeds maximum length of %d characters", MaxTaskNameLength))
			return
		}
		task.Name = sanitized
	}
	if req.Description != nil {
		sanitized := validation.SanitizeText(*req.Description)
		if len(sanitized) > MaxDescriptionLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Description exceeds maximum length of %d characters", MaxDescriptionLength))
			return
		}
		task.Description = sanitized
	}
	if req.ScheduleDate != nil {
		task.ScheduleDate = parseScheduleDate(req.ScheduleDate)
	}
	if req.ScheduleTime != nil {
		task.ScheduleTime = req.ScheduleTime
	}
	if req.Subtasks != nil {
		subtasks := *req.Subtasks
		for i := range subtasks {
			if subtasks[i].ID == "" {
				subtasks[i].ID = uuid.NewString()
			}
		}
		task.Subtasks = subtasks
	}
	task.RefreshStatus()

	updated, err := h.coordinator.UpdateTask(r.Context(), task)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteTask deletes a task and tears down any live subtask timers
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	for _, sub := range task.Subtasks {
		h.timers.Remove(sub.ID)
	}

	if err := h.taskRepo.Delete(r.Context(), task.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSubtask appends a new subtask to a task
func (h *TaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var partial models.Subtask
	if !decodeBody(w, r, &partial) {
		return
	}
	if partial.Status != "" {
		if err := validation.ValidateStatus(string(partial.Status)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}
	partial.Name = validation.SanitizeText(partial.Name)

	updated, err := h.coordinator.AddSubtask(r.Context(), task, partial)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to add subtask")
		return
	}

	respondJSON(w, http.StatusCreated, updated)
}

// UpdateSubtask replaces a subtask and re-aggregates the task status
func (h *TaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	subtaskID := mux.Vars(r)["subtaskID"]

	var sub models.Subtask
	if !decodeBody(w, r, &sub) {
		return
	}
	sub.ID = subtaskID
	if sub.Status != "" {
		if err := validation.ValidateStatus(string(sub.Status)); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
	}
	sub.Name = validation.SanitizeText(sub.Name)

	updated, err := h.coordinator.UpdateSubtask(r.Context(), task, sub)
	if err != nil {
		if errors.Is(err, tasks.ErrSubtaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Subtask not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update subtask")
		return
	}

	// Keep any live countdown in step with the stored status, e.g. a
	// completion arriving from outside the timer endpoints.
	h.timers.Sync(subtaskID, sub.Status)

	respondJSON(w, http.StatusOK, updated)
}

// DeleteSubtask removes a subtask from a task
func (h *TaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	subtaskID := mux.Vars(r)["subtaskID"]

	if task.FindSubtask(subtaskID) == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Subtask not found")
		return
	}

	updated, err := h.coordinator.DeleteSubtask(r.Context(), task, subtaskID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete subtask")
		return
	}

	h.timers.Remove(subtaskID)

	respondJSON(w, http.StatusOK, updated)
}

// SyncCalendar enqueues a calendar sync job for the task
func (h *TaskHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	job := queue.NewJob(queue.JobTypeCalendarSync, task.ID)
	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to enqueue sync job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
}

// loadTask parses the task id from the route and fetches the task,
// writing the error response itself when either step fails
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return nil, false
	}

	task, err := h.taskRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return nil, false
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve task")
		return nil, false
	}

	return task, true
}

// decodeBody decodes the JSON request body into dst, writing the error
// response itself on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		// Check if error is due to request size limit
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

func respondValidationError(w http.ResponseWriter, err error) {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
			return
		}
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
}

// parseScheduleDate tolerates user-entered dates: an unparseable value maps
// to an absent schedule instead of an error
func parseScheduleDate(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, *raw); err == nil {
			return &parsed
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewhitmore/taskdeck/internal/models"
)

// ErrTaskNotFound is returned when no task row matches the requested id
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository handles task database operations
type TaskRepository struct {
	db  *DB
	log *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db, log: zap.NewNop()}
}

// SetLogger attaches a logger for non-fatal repository events
func (r *TaskRepository) SetLogger(log *zap.Logger) {
	if log != nil {
		r.log = log
	}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, name, description, status, subtasks, schedule_date, schedule_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	subtasksJSON, err := json.Marshal(subtasksOrEmpty(task.Subtasks))
	if err != nil {
		return fmt.Errorf("failed to marshal subtasks: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		task.Status,
		subtasksJSON,
		nullableTime(task.ScheduleDate),
		nullableString(task.ScheduleTime),
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `
		SELECT id, name, description, status, subtasks, schedule_date, schedule_time, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List retrieves all tasks, optionally filtered by status
func (r *TaskRepository) List(ctx context.Context, status *models.Status) ([]*models.Task, error) {
	query, args := listQuery(status)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET name = $2, description = $3, status = $4, subtasks = $5, schedule_date = $6, schedule_time = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at
	`

	subtasksJSON, err := json.Marshal(subtasksOrEmpty(task.Subtasks))
	if err != nil {
		return fmt.Errorf("failed to marshal subtasks: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		task.Status,
		subtasksJSON,
		nullableTime(task.ScheduleDate),
		nullableString(task.ScheduleTime),
		time.Now(),
	).Scan(&task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// Save writes the whole task row, creating it when it does not exist yet.
// The write is last-write-wins: callers serialize per-task writes upstream.
func (r *TaskRepository) Save(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (id, name, description, status, subtasks, schedule_date, schedule_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    status = EXCLUDED.status,
		    subtasks = EXCLUDED.subtasks,
		    schedule_date = EXCLUDED.schedule_date,
		    schedule_time = EXCLUDED.schedule_time,
		    updated_at = now()
		RETURNING created_at, updated_at
	`

	subtasksJSON, err := json.Marshal(subtasksOrEmpty(task.Subtasks))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subtasks: %w", err)
	}

	saved := task.Clone()
	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Name,
		task.Description,
		task.Status,
		subtasksJSON,
		nullableTime(task.ScheduleDate),
		nullableString(task.ScheduleTime),
	).Scan(&saved.CreatedAt, &saved.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	return saved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var subtasksJSON []byte
	var scheduleDate sql.NullTime
	var scheduleTime sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		&task.Status,
		&subtasksJSON,
		&scheduleDate,
		&scheduleTime,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(subtasksJSON, &task.Subtasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subtasks: %w", err)
	}

	if scheduleDate.Valid {
		task.ScheduleDate = &scheduleDate.Time
	}
	if scheduleTime.Valid {
		task.ScheduleTime = &scheduleTime.String
	}

	return task, nil
}

// listQuery builds the list statement; a nil status means no filter
func listQuery(status *models.Status) (string, []any) {
	query := `
		SELECT id, name, description, status, subtasks, schedule_date, schedule_time, created_at, updated_at
		FROM tasks
	`
	var args []any
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC"
	return query, args
}

// subtasksOrEmpty keeps a nil slice from serializing as JSON null
func subtasksOrEmpty(subtasks []models.Subtask) []models.Subtask {
	if subtasks == nil {
		return []models.Subtask{}
	}
	return subtasks
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

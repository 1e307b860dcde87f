package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/tasks"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, status *models.Status) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Save(ctx context.Context, task *models.Task) (*models.Task, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface = (*TaskRepository)(nil)
	_ tasks.Store             = (*TaskRepository)(nil)
)

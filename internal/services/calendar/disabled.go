package calendar

import (
	"context"

	"github.com/ewhitmore/taskdeck/internal/models"
)

// Disabled is the Syncer used when no Google credentials are configured.
// Sync jobs still drain from the queue; they just have no external effect.
type Disabled struct{}

func (Disabled) SyncTask(ctx context.Context, task *models.Task) error   { return nil }
func (Disabled) RemoveTask(ctx context.Context, task *models.Task) error { return nil }

var _ Syncer = Disabled{}

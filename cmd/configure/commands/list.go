package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/ewhitmore/taskdeck/internal/config"
	"github.com/ewhitmore/taskdeck/internal/database"
	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/timeutil"
	"github.com/ewhitmore/taskdeck/internal/validation"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "List stored tasks with their subtasks and remaining time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			var status *models.Status
			if statusFilter != "" {
				if err := validation.ValidateStatus(statusFilter); err != nil {
					return err
				}
				sEnum := models.Status(statusFilter)
				status = &sEnum
			}

			taskRepo := database.NewTaskRepository(db)
			ctx := context.Background()

			taskList, err := taskRepo.List(ctx, status)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			if len(taskList) == 0 {
				fmt.Println("No tasks found")
				return nil
			}

			for _, task := range taskList {
				fmt.Printf("%s  [%s]  %s\n", task.ID, task.Status, task.Name)
				if task.ScheduleDate != nil {
					when := task.ScheduleDate.Format("2006-01-02")
					if task.ScheduleTime != nil {
						when += " " + *task.ScheduleTime
					}
					fmt.Printf("    scheduled: %s\n", when)
				}
				for _, sub := range task.Subtasks {
					fmt.Printf("    - [%s] %s (%s)\n",
						sub.Status, sub.Name, timeutil.FormatClock(int(sub.Duration)))
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (PENDING, IN_PROGRESS, COMPLETED)")

	return cmd
}

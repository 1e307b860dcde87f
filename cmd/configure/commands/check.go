package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ewhitmore/taskdeck/internal/config"
	"github.com/ewhitmore/taskdeck/internal/database"
	"github.com/ewhitmore/taskdeck/internal/middleware"
	"github.com/ewhitmore/taskdeck/internal/queue"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check infrastructure connectivity",
		Long:  "Verify the database, Redis and RabbitMQ connections used by the API and worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			fmt.Println("Checking database...")
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database check failed: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()
			fmt.Println("✓ Database is reachable")

			fmt.Println("\nChecking Redis...")
			redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("redis check failed: %w", err)
			}
			defer func() {
				if err := redisLimiter.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close redis: %v\n", err)
				}
			}()
			fmt.Println("✓ Redis is reachable")

			fmt.Println("\nChecking RabbitMQ...")
			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("rabbitmq check failed: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close rabbitmq: %v\n", err)
				}
			}()
			if err := jobQueue.HealthCheck(ctx); err != nil {
				return fmt.Errorf("rabbitmq health check failed: %w", err)
			}
			fmt.Println("✓ RabbitMQ is reachable")

			if cfg.CalendarEnabled() {
				fmt.Printf("\nCalendar sync enabled (calendar %s)\n", cfg.GoogleCalendarID)
			} else {
				fmt.Println("\nCalendar sync disabled (no credentials configured)")
			}

			return nil
		},
	}

	return cmd
}

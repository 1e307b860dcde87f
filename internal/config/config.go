package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL           string `yaml:"database_url"`
	ServerPort            string `yaml:"server_port"`
	BaseURL               string `yaml:"base_url"`
	FrontendURL           string `yaml:"frontend_url"`
	EnableHSTS            bool   `yaml:"enable_hsts"`
	RedisURL              string `yaml:"redis_url"`
	RabbitMQURL           string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch      int    `yaml:"rabbitmq_prefetch"`
	RateLimit             string `yaml:"rate_limit"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleCalendarID      string `yaml:"google_calendar_id"`
	ReminderWebhookURL    string `yaml:"reminder_webhook_url"`
	WorkerDebugMode       bool   `yaml:"worker_debug_mode"`
	ServerDebugMode       bool   `yaml:"server_debug_mode"`
	OTELEnabled           bool   `yaml:"otel_enabled"`
	OTELEndpoint          string `yaml:"otel_endpoint"`
}

// Load loads configuration. A YAML file named by CONFIG_FILE supplies
// defaults; environment variables override it.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       "8080",
		BaseURL:          "http://localhost:8080",
		FrontendURL:      "http://localhost:3000",
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
		RateLimit:        "5-S",
		GoogleCalendarID: "primary",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.GoogleCredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", cfg.GoogleCredentialsFile)
	cfg.GoogleCalendarID = getEnv("GOOGLE_CALENDAR_ID", cfg.GoogleCalendarID)
	cfg.ReminderWebhookURL = getEnv("REMINDER_WEBHOOK_URL", cfg.ReminderWebhookURL)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for job queueing (calendar sync and reminders ride the queue)")
	}

	return cfg, nil
}

// CalendarEnabled reports whether calendar sync is configured
func (c *Config) CalendarEnabled() bool {
	return c.GoogleCredentialsFile != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

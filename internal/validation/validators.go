package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/ewhitmore/taskdeck/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("clock_time", validateClockTime); err != nil {
		panic(fmt.Sprintf("failed to register clock_time validator: %v", err))
	}
}

// validateTaskStatus validates that a string is a valid Status enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.Status(value) {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
		return true
	default:
		return false
	}
}

// validateClockTime validates that a string is a 24-hour HH:MM clock time
func validateClockTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("15:04", value)
	return err == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateStatus validates a Status string value
func ValidateStatus(value string) error {
	status := models.Status(value)
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'PENDING', 'IN_PROGRESS', or 'COMPLETED')", value)
	}
}

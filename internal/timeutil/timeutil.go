package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxSeconds is the maximum subtask duration (3 hours)
	MaxSeconds = 10800
)

// ParseBounded parses a non-negative integer from free-form input.
// Empty or non-numeric input yields 0; parsed values are clamped to [0, max].
func ParseBounded(value string, max int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 0 {
		return 0
	}
	if parsed > max {
		return max
	}
	return parsed
}

// Components decomposes a total number of seconds into hours, minutes and seconds.
func Components(totalSeconds int) (hours, minutes, seconds int) {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours = totalSeconds / 3600
	minutes = (totalSeconds % 3600) / 60
	seconds = totalSeconds % 60
	return hours, minutes, seconds
}

// TotalSeconds recombines hours, minutes and seconds into a total,
// clamped to MaxSeconds.
func TotalSeconds(hours, minutes, seconds int) int {
	total := hours*3600 + minutes*60 + seconds
	if total < 0 {
		return 0
	}
	if total > MaxSeconds {
		return MaxSeconds
	}
	return total
}

// FormatClock renders a countdown value the way the timer displays it:
// "M:SS" while under an hour, "H:MM:SS" otherwise.
func FormatClock(totalSeconds int) string {
	hours, minutes, seconds := Components(totalSeconds)
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatDuration renders a duration in a compact human form, e.g. "1h 30m".
// Seconds are shown only when there is no hours component; zero renders "0s".
func FormatDuration(totalSeconds int) string {
	hours, minutes, seconds := Components(totalSeconds)

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 && hours == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

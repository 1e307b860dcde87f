package timeutil

import "testing"

func TestParseBounded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		max   int
		want  int
	}{
		{"empty", "", 59, 0},
		{"non-numeric", "abc", 59, 0},
		{"in range", "42", 59, 42},
		{"clamped to max", "999", 59, 59},
		{"negative treated as zero", "-5", 59, 0},
		{"whitespace", " 30 ", 59, 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseBounded(tt.value, tt.max); got != tt.want {
				t.Errorf("ParseBounded(%q, %d) = %d, want %d", tt.value, tt.max, got, tt.want)
			}
		})
	}
}

func TestComponentsRoundTrip(t *testing.T) {
	t.Parallel()

	// Decomposing and recombining must be the identity over the full
	// representable range.
	for n := 0; n <= MaxSeconds; n++ {
		h, m, s := Components(n)
		if got := TotalSeconds(h, m, s); got != n {
			t.Fatalf("round trip failed for %d: got %d (h=%d m=%d s=%d)", n, got, h, m, s)
		}
	}
}

func TestTotalSecondsClamping(t *testing.T) {
	t.Parallel()

	if got := TotalSeconds(4, 0, 0); got != MaxSeconds {
		t.Errorf("TotalSeconds(4,0,0) = %d, want %d", got, MaxSeconds)
	}
	if got := TotalSeconds(0, 0, -10); got != 0 {
		t.Errorf("TotalSeconds(0,0,-10) = %d, want 0", got)
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{MaxSeconds, "3:00:00"},
	}

	for _, tt := range tests {
		tt := tt
		if got := FormatClock(tt.seconds); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{90, "1m 30s"},
		{5400, "1h 30m"},
		{3600, "1h"},
		{3605, "1h"}, // seconds omitted once there is an hours component
	}

	for _, tt := range tests {
		tt := tt
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

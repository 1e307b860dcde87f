package models

import (
	"encoding/json"
	"strconv"

	"github.com/ewhitmore/taskdeck/internal/timeutil"
)

// Seconds is a remaining-time value in whole seconds, bounded to
// [0, timeutil.MaxSeconds]. The external payload carries it as a decimal
// string ("120"), so it marshals to a JSON string; on the way in it accepts
// either a string or a bare number, coercing anything unparseable to 0.
type Seconds int

// Int returns the value as a plain int.
func (s Seconds) Int() int { return int(s) }

// Clamped returns the value clamped to the valid duration range.
func (s Seconds) Clamped() Seconds {
	if s < 0 {
		return 0
	}
	if int(s) > timeutil.MaxSeconds {
		return Seconds(timeutil.MaxSeconds)
	}
	return s
}

// MarshalJSON serializes the value as a decimal string.
func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(s.Clamped())))
}

// UnmarshalJSON accepts a decimal string or a bare number.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Seconds(timeutil.ParseBounded(str, timeutil.MaxSeconds))
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		// Unparseable durations coerce to zero rather than failing the
		// surrounding task payload.
		*s = 0
		return nil
	}
	*s = Seconds(n).Clamped()
	return nil
}

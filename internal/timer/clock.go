package timer

import "time"

// Clock provides the one-second tick source driving a running countdown.
// Tests substitute a manual clock to advance virtual time.
type Clock interface {
	// Tick returns a channel delivering ticks at the given interval and a
	// function that stops delivery and releases the underlying resources.
	Tick(interval time.Duration) (<-chan time.Time, func())
}

type realClock struct{}

func (realClock) Tick(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// RealClock returns a Clock backed by time.Ticker.
func RealClock() Clock { return realClock{} }

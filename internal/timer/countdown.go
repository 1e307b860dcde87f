package timer

import (
	"context"
	"sync"
	"time"

	"github.com/ewhitmore/taskdeck/internal/models"
	"github.com/ewhitmore/taskdeck/internal/timeutil"
	"go.uber.org/zap"
)

// State is the countdown engine state. It maps onto the stored subtask
// status: Idle and Paused both persist as PENDING (distinguishable only by
// whether a countdown was previously begun), Running persists as IN_PROGRESS
// and Completed as COMPLETED.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// ExtendSeconds is the default extension applied by the external
// "add five minutes" control.
const ExtendSeconds = 300

// PersistFunc receives the complete new subtask snapshot after every
// state-affecting transition. It is never passed a partial diff.
type PersistFunc func(ctx context.Context, subtask models.Subtask) error

// Observer is notified with (subtask, active, remaining) on every tick while
// running and on every transition out of running.
type Observer func(subtask models.Subtask, active bool, remaining int)

// Countdown is a per-subtask countdown engine. All transitions are
// serialized through an internal mutex; the one-second decrement runs on a
// dedicated goroutine that is guaranteed to be stopped on every exit from
// the running state.
//
// Persistence is optimistic: local state updates immediately and a failed
// persist call is recorded and surfaced but never rolled back. The next
// successful transition re-persists the latest state.
type Countdown struct {
	mu        sync.Mutex
	subtask   models.Subtask
	initial   int // allotment captured at construction; reset restores this
	remaining int
	state     State
	persist   PersistFunc
	observer  Observer
	clock     Clock
	log       *zap.Logger
	stopTick  func()        // stops the live ticker; nil unless running
	quit      chan struct{} // closed to end the tick goroutine
	lastErr   error
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithClock substitutes the tick source (used by tests).
func WithClock(c Clock) Option {
	return func(cd *Countdown) { cd.clock = c }
}

// WithObserver sets the tick/transition observer.
func WithObserver(o Observer) Option {
	return func(cd *Countdown) { cd.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cd *Countdown) { cd.log = l }
}

// New creates a countdown for the given subtask. The subtask's current
// duration becomes both the initial allotment and the remaining time. A
// subtask already stored as COMPLETED constructs in the completed state with
// zero remaining: external completion always wins.
func New(subtask models.Subtask, persist PersistFunc, opts ...Option) *Countdown {
	cd := &Countdown{
		subtask:   subtask,
		initial:   subtask.Duration.Int(),
		remaining: subtask.Duration.Int(),
		state:     StateIdle,
		persist:   persist,
		clock:     RealClock(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cd)
	}
	if subtask.Status == models.StatusCompleted {
		cd.state = StateCompleted
		cd.remaining = 0
		cd.subtask.Duration = 0
	}
	return cd
}

// Start begins (or resumes) the countdown. It is a no-op while already
// running or after completion.
func (c *Countdown) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateRunning || c.state == StateCompleted {
		c.mu.Unlock()
		return nil
	}
	// Nothing left to count: complete without ever activating
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = StateCompleted
		c.subtask.Status = models.StatusCompleted
		c.subtask.Duration = 0
		snap := c.subtask
		c.mu.Unlock()

		c.notify(snap, false, 0)
		return c.save(ctx, snap)
	}
	c.state = StateRunning
	c.subtask.Status = models.StatusInProgress
	c.subtask.Duration = models.Seconds(c.remaining)
	snap := c.subtask

	ticks, stop := c.clock.Tick(time.Second)
	quit := make(chan struct{})
	c.stopTick = stop
	c.quit = quit
	go c.run(ctx, ticks, quit)
	c.mu.Unlock()

	return c.save(ctx, snap)
}

// Pause halts a running countdown, preserving the remaining time.
func (c *Countdown) Pause(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return nil
	}
	c.state = StatePaused
	c.subtask.Status = models.StatusPending
	c.subtask.Duration = models.Seconds(c.remaining)
	c.stopTickingLocked()
	snap := c.subtask
	remaining := c.remaining
	c.mu.Unlock()

	c.notify(snap, false, remaining)
	return c.save(ctx, snap)
}

// Reset restores the initial allotment captured at construction, not the
// current remaining time, and returns the countdown to idle.
func (c *Countdown) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateIdle
	c.remaining = c.initial
	c.subtask.Status = models.StatusPending
	c.subtask.Duration = models.Seconds(c.initial)
	c.stopTickingLocked()
	snap := c.subtask
	c.mu.Unlock()

	c.notify(snap, false, c.initial)
	return c.save(ctx, snap)
}

// Complete force-completes the countdown from any state.
func (c *Countdown) Complete(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateCompleted {
		c.mu.Unlock()
		return nil
	}
	c.state = StateCompleted
	c.remaining = 0
	c.subtask.Status = models.StatusCompleted
	c.subtask.Duration = 0
	c.stopTickingLocked()
	snap := c.subtask
	c.mu.Unlock()

	c.notify(snap, false, 0)
	return c.save(ctx, snap)
}

// Extend adds the given number of seconds to the remaining time. While
// running the new remaining time is persisted immediately; otherwise the
// change stays local until the next persisted transition.
func (c *Countdown) Extend(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		seconds = ExtendSeconds
	}
	c.mu.Lock()
	if c.state == StateCompleted {
		c.mu.Unlock()
		return nil
	}
	c.remaining += seconds
	if c.remaining > timeutil.MaxSeconds {
		c.remaining = timeutil.MaxSeconds
	}
	c.subtask.Duration = models.Seconds(c.remaining)
	running := c.state == StateRunning
	if running {
		c.subtask.Status = models.StatusInProgress
	}
	snap := c.subtask
	remaining := c.remaining
	c.mu.Unlock()

	if !running {
		return nil
	}
	c.notify(snap, true, remaining)
	return c.save(ctx, snap)
}

// Sync applies an externally stored status change. An external COMPLETED
// forces the remaining time to zero and stops the countdown; it is not
// re-persisted since the store already holds it.
func (c *Countdown) Sync(status models.Status) {
	if status != models.StatusCompleted {
		return
	}
	c.mu.Lock()
	c.state = StateCompleted
	c.remaining = 0
	c.subtask.Status = models.StatusCompleted
	c.subtask.Duration = 0
	c.stopTickingLocked()
	snap := c.subtask
	c.mu.Unlock()

	c.notify(snap, false, 0)
}

// Stop cancels the decrement without persisting anything. Used at teardown.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if c.state == StateRunning {
		c.state = StatePaused
		c.subtask.Status = models.StatusPending
		c.subtask.Duration = models.Seconds(c.remaining)
	}
	c.stopTickingLocked()
	c.mu.Unlock()
}

// State returns the current engine state.
func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Remaining returns the current remaining time in seconds.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Snapshot returns the subtask as it would be persisted right now.
func (c *Countdown) Snapshot() models.Subtask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtask
}

// LastErr returns the most recent persistence error, if any.
func (c *Countdown) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// run drives the per-second decrement until the countdown leaves the
// running state or the context is cancelled.
func (c *Countdown) run(ctx context.Context, ticks <-chan time.Time, quit chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return
		case <-quit:
			return
		case <-ticks:
			if done := c.tick(ctx); done {
				return
			}
		}
	}
}

// tick applies one second of elapsed time. Returns true when the loop
// should exit.
func (c *Countdown) tick(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return true
	}

	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = StateCompleted
		c.subtask.Status = models.StatusCompleted
		c.subtask.Duration = 0
		c.stopTickingLocked()
		snap := c.subtask
		c.mu.Unlock()

		c.notify(snap, false, 0)
		if err := c.save(ctx, snap); err != nil {
			c.log.Warn("countdown_completion_persist_failed",
				zap.String("subtask_id", snap.ID),
				zap.Error(err),
			)
		}
		return true
	}

	c.subtask.Duration = models.Seconds(c.remaining)
	snap := c.subtask
	remaining := c.remaining
	c.mu.Unlock()

	c.notify(snap, true, remaining)
	return false
}

// stopTickingLocked cancels the live ticker and ends the tick goroutine.
// Must be called with the mutex held. Safe to call when not running.
func (c *Countdown) stopTickingLocked() {
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
	if c.quit != nil {
		close(c.quit)
		c.quit = nil
	}
}

func (c *Countdown) notify(snap models.Subtask, active bool, remaining int) {
	if c.observer != nil {
		c.observer(snap, active, remaining)
	}
}

// save issues the persistence call. Failures are recorded and returned but
// local state is never rolled back: the countdown keeps its own truth and
// the next transition retries with the latest snapshot.
func (c *Countdown) save(ctx context.Context, snap models.Subtask) error {
	if c.persist == nil {
		return nil
	}
	err := c.persist(ctx, snap)
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	if err != nil {
		c.log.Warn("subtask_persist_failed",
			zap.String("subtask_id", snap.ID),
			zap.String("status", string(snap.Status)),
			zap.Error(err),
		)
	}
	return err
}

package timer

import (
	"context"
	"sync"

	"github.com/ewhitmore/taskdeck/internal/models"
	"go.uber.org/zap"
)

// Registry tracks the live countdown per subtask id and is the external
// control handle: a parent (screen or API handler) completes or extends an
// active subtask through the registry instead of reaching into the engine.
// At most one countdown exists per subtask; spawning a replacement stops the
// previous one first, so two decrement loops can never run concurrently for
// the same subtask.
type Registry struct {
	mu     sync.Mutex
	active map[string]*Countdown
	log    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		active: make(map[string]*Countdown),
		log:    log,
	}
}

// Obtain returns the countdown for the subtask, creating one if absent.
// An existing countdown is kept as-is so start/pause cycles retain the
// initial allotment captured when the countdown was first created.
func (r *Registry) Obtain(subtask models.Subtask, persist PersistFunc, opts ...Option) *Countdown {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cd, ok := r.active[subtask.ID]; ok {
		return cd
	}
	opts = append([]Option{WithLogger(r.log)}, opts...)
	cd := New(subtask, persist, opts...)
	r.active[subtask.ID] = cd
	return cd
}

// Get returns the countdown for the subtask id, if one exists.
func (r *Registry) Get(subtaskID string) (*Countdown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cd, ok := r.active[subtaskID]
	return cd, ok
}

// Complete force-completes the countdown for the subtask id.
// Reports whether a countdown existed.
func (r *Registry) Complete(ctx context.Context, subtaskID string) (bool, error) {
	cd, ok := r.Get(subtaskID)
	if !ok {
		return false, nil
	}
	return true, cd.Complete(ctx)
}

// ExtendBy adds seconds to the countdown for the subtask id.
// Reports whether a countdown existed.
func (r *Registry) ExtendBy(ctx context.Context, subtaskID string, seconds int) (bool, error) {
	cd, ok := r.Get(subtaskID)
	if !ok {
		return false, nil
	}
	return true, cd.Extend(ctx, seconds)
}

// Sync applies an externally stored status to the countdown, if one exists.
func (r *Registry) Sync(subtaskID string, status models.Status) {
	if cd, ok := r.Get(subtaskID); ok {
		cd.Sync(status)
	}
}

// Remove stops and forgets the countdown for the subtask id.
func (r *Registry) Remove(subtaskID string) {
	r.mu.Lock()
	cd, ok := r.active[subtaskID]
	delete(r.active, subtaskID)
	r.mu.Unlock()
	if ok {
		cd.Stop()
	}
}

// Shutdown stops every live countdown without persisting. Used at teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	countdowns := make([]*Countdown, 0, len(r.active))
	for _, cd := range r.active {
		countdowns = append(countdowns, cd)
	}
	r.active = make(map[string]*Countdown)
	r.mu.Unlock()

	for _, cd := range countdowns {
		cd.Stop()
	}
}

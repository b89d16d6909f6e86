// Package toggle drives optimistic like/follow buttons: the displayed state
// flips synchronously before the store round-trip, and snaps back to the last
// confirmed state if the round-trip fails. Each (viewer, target) pair is an
// explicit little state machine rather than closure state scattered across
// UI callbacks.
package toggle

import (
	"context"
	"sync"
	"time"
)

// Phase is the lifecycle of one relationship pair's toggle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseConfirmed
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Key identifies one viewer->target relationship.
type Key struct {
	ViewerID string
	TargetID string
}

// ApplyFunc performs the store mutation for the desired state, e.g.
// LikeService.SetLiked or FollowService.SetFollowing.
type ApplyFunc func(ctx context.Context, viewerID, targetID string, desired bool) error

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds each store round-trip. A timed-out call takes the same
// rollback path as an explicit failure, so the UI never sticks in the
// optimistic state behind a hung request.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithCounter makes the controller maintain a displayed aggregate alongside
// the boolean (the like count next to the like button). The displayed count
// never goes below zero.
func WithCounter() Option {
	return func(c *Controller) { c.counted = true }
}

type entry struct {
	phase Phase

	confirmed      bool
	confirmedCount int64

	displayed      bool
	displayedCount int64

	// generation increments on every flip; completions belonging to an
	// older generation must not touch the display (last intent wins).
	generation uint64
}

// Controller holds the optimistic display state for one kind of toggle.
// Methods are safe for concurrent use.
type Controller struct {
	apply   ApplyFunc
	timeout time.Duration
	counted bool

	mu      sync.Mutex
	entries map[Key]*entry
}

// NewController creates a controller around the given store operation.
func NewController(apply ApplyFunc, opts ...Option) *Controller {
	c := &Controller{
		apply:   apply,
		entries: make(map[Key]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed installs the confirmed state read from the store on a page load.
func (c *Controller) Seed(key Key, on bool, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		phase:          PhaseIdle,
		confirmed:      on,
		confirmedCount: count,
		displayed:      on,
		displayedCount: count,
	}
}

// State returns what the UI should currently show for the pair.
func (c *Controller) State(key Key) (on bool, count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	return e.displayed, e.displayedCount
}

// Phase returns the pair's lifecycle phase.
func (c *Controller) Phase(key Key) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry(key).phase
}

// Toggle flips the pair's displayed state immediately, then runs the store
// operation. It returns the state the display settled on and the store error,
// if any. On failure the display reverts to the last confirmed state, unless
// a newer toggle has taken over the pair in the meantime, in which case the
// stale completion leaves the display alone.
func (c *Controller) Toggle(ctx context.Context, key Key) (bool, error) {
	c.mu.Lock()
	e := c.entry(key)

	desired := !e.displayed
	e.generation++
	generation := e.generation
	e.phase = PhasePending
	e.displayed = desired
	if c.counted {
		e.displayedCount = clampNonNegative(e.displayedCount + countDelta(desired))
	}
	c.mu.Unlock()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	err := c.apply(ctx, key.ViewerID, key.TargetID, desired)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e.generation != generation {
		// A later toggle owns the display now; this request resolved
		// independently and its outcome is dropped.
		return e.displayed, err
	}

	if err != nil {
		e.phase = PhaseRolledBack
		e.displayed = e.confirmed
		e.displayedCount = e.confirmedCount
		return e.displayed, err
	}

	e.phase = PhaseConfirmed
	e.confirmed = e.displayed
	e.confirmedCount = e.displayedCount
	return e.displayed, nil
}

// entry returns the pair's state, creating an idle off entry if the pair has
// never been seeded. Callers must hold c.mu.
func (c *Controller) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{phase: PhaseIdle}
		c.entries[key] = e
	}
	return e
}

func countDelta(desired bool) int64 {
	if desired {
		return 1
	}
	return -1
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

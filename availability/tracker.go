// Package availability tracks a rolling window of probe outcomes and
// detects degraded and lost service with two hysteresis thresholds.
//
// A Tracker is owned by a single goroutine; it performs no I/O and holds
// no locks.
package availability

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultCapacity          = 24
	DefaultDegradedThreshold = 50.0
	DefaultLostThreshold     = 5.0

	degradedName = "degraded"
	lostName     = "lost"
)

var (
	ErrInvalidCapacity  = errors.New("window capacity must be positive")
	ErrInvalidThreshold = errors.New("threshold must be within [0, 100]")
)

type Tracker struct {
	window   *window
	degraded *Threshold
	lost     *Threshold
	now      func() time.Time
}

type config struct {
	capacity int
	degraded float64
	lost     float64
	now      func() time.Time
}

type Option func(*config)

func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

func WithDegradedThreshold(percent float64) Option {
	return func(c *config) { c.degraded = percent }
}

func WithLostThreshold(percent float64) Option {
	return func(c *config) { c.lost = percent }
}

// WithClock overrides time.Now, used to stamp transitions.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

func New(opts ...Option) (*Tracker, error) {
	cfg := config{
		capacity: DefaultCapacity,
		degraded: DefaultDegradedThreshold,
		lost:     DefaultLostThreshold,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, cfg.capacity)
	}
	for _, p := range []float64{cfg.degraded, cfg.lost} {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, p)
		}
	}

	return &Tracker{
		window:   newWindow(cfg.capacity),
		degraded: NewThreshold(degradedName, cfg.degraded),
		lost:     NewThreshold(lostName, cfg.lost),
		now:      cfg.now,
	}, nil
}

// Record ingests one outcome and evaluates the degraded machine, then the
// lost machine, against the refreshed rate. It returns 0-2 events in that
// order.
func (t *Tracker) Record(outcome bool) []Event {
	return t.RecordAt(outcome, t.now())
}

// RecordAt is Record with the caller's timestamp, so a tick can stamp its
// result and its events with the same instant.
func (t *Tracker) RecordAt(outcome bool, now time.Time) []Event {
	t.window.record(outcome)

	rate, ok := t.window.rate()
	if !ok {
		return nil
	}

	var events []Event
	for _, m := range []*Threshold{t.degraded, t.lost} {
		if tr, fired := m.Evaluate(rate, now); fired {
			events = append(events, eventFor(m.Name, tr, now))
		}
	}
	return events
}

// Rate is the current success percentage. It reports false, with a zero
// rate, before the first Record.
func (t *Tracker) Rate() (float64, bool) { return t.window.rate() }

func (t *Tracker) Len() int { return t.window.len() }

func (t *Tracker) Capacity() int { return t.window.capacity() }

// Outcomes returns a copy of the window, oldest first.
func (t *Tracker) Outcomes() []bool { return t.window.outcomes() }

// MachineState is a read-only view of one threshold machine. Since is nil
// while the machine is normal.
type MachineState struct {
	Name      string     `json:"name"`
	Threshold float64    `json:"threshold"`
	State     State      `json:"-"`
	Triggered bool       `json:"triggered"`
	Since     *time.Time `json:"since,omitempty"`
}

func (t *Tracker) Degraded() MachineState { return snapshot(t.degraded) }

func (t *Tracker) Lost() MachineState { return snapshot(t.lost) }

func snapshot(m *Threshold) MachineState {
	ms := MachineState{
		Name:      m.Name,
		Threshold: m.Trigger,
		State:     m.State(),
		Triggered: m.State() == StateTriggered,
	}
	if ms.Triggered {
		since := m.Since()
		ms.Since = &since
	}
	return ms
}

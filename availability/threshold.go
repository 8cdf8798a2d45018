package availability

import "time"

type State int

const (
	StateNormal State = iota
	StateTriggered
)

func (s State) String() string {
	if s == StateTriggered {
		return "triggered"
	}
	return "normal"
}

// Threshold is a two-state hysteresis machine. It triggers when the rate
// drops strictly below Trigger and recovers when the rate rises strictly
// above it; a rate equal to Trigger leaves the state unchanged.
type Threshold struct {
	Name    string
	Trigger float64

	state State
	since time.Time
}

func NewThreshold(name string, trigger float64) *Threshold {
	return &Threshold{Name: name, Trigger: trigger}
}

// Transition describes a state change produced by Evaluate.
type Transition struct {
	From     State
	To       State
	Rate     float64
	Duration time.Duration // time spent triggered, set on recovery only
}

// Evaluate applies one rate sample. It returns false when no transition fired.
func (t *Threshold) Evaluate(rate float64, now time.Time) (Transition, bool) {
	switch {
	case t.state == StateNormal && rate < t.Trigger:
		t.state = StateTriggered
		t.since = now
		return Transition{From: StateNormal, To: StateTriggered, Rate: rate}, true
	case t.state == StateTriggered && rate > t.Trigger:
		elapsed := now.Sub(t.since)
		t.state = StateNormal
		t.since = time.Time{}
		return Transition{From: StateTriggered, To: StateNormal, Rate: rate, Duration: elapsed}, true
	}
	return Transition{}, false
}

func (t *Threshold) State() State { return t.state }

// Since is the time the machine entered StateTriggered, zero while normal.
func (t *Threshold) Since() time.Time { return t.since }

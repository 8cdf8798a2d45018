package availability

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindDegradedTriggered Kind = "degraded-triggered"
	KindDegradedRecovered Kind = "degraded-recovered"
	KindLostTriggered     Kind = "lost-triggered"
	KindLostRecovered     Kind = "lost-recovered"
)

// Event is a threshold transition emitted by Tracker.Record.
type Event struct {
	Kind     Kind          `json:"kind"`
	Rate     float64       `json:"rate"`
	Duration time.Duration `json:"duration,omitempty"`
	At       time.Time     `json:"at"`
}

// Recovered reports whether the event closes a triggered period.
func (e Event) Recovered() bool {
	return e.Kind == KindDegradedRecovered || e.Kind == KindLostRecovered
}

// DurationHMS renders Duration as HH:MM:SS. Hours are not wrapped at 24.
func (e Event) DurationHMS() string {
	return FormatHMS(e.Duration)
}

func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

func eventFor(name string, tr Transition, at time.Time) Event {
	var kind Kind
	switch {
	case name == lostName && tr.To == StateTriggered:
		kind = KindLostTriggered
	case name == lostName:
		kind = KindLostRecovered
	case tr.To == StateTriggered:
		kind = KindDegradedTriggered
	default:
		kind = KindDegradedRecovered
	}
	return Event{Kind: kind, Rate: tr.Rate, Duration: tr.Duration, At: at}
}

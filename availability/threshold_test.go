package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdTransitions(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewThreshold("degraded", 50)

	_, fired := m.Evaluate(50, start)
	assert.False(t, fired)
	assert.Equal(t, StateNormal, m.State())
	assert.True(t, m.Since().IsZero())

	tr, fired := m.Evaluate(49.99, start)
	require.True(t, fired)
	assert.Equal(t, Transition{From: StateNormal, To: StateTriggered, Rate: 49.99}, tr)
	assert.Equal(t, start, m.Since())

	// Staying low or sitting on the threshold keeps the first entry time.
	_, fired = m.Evaluate(10, start.Add(time.Minute))
	assert.False(t, fired)
	_, fired = m.Evaluate(50, start.Add(2*time.Minute))
	assert.False(t, fired)
	assert.Equal(t, start, m.Since())

	tr, fired = m.Evaluate(50.01, start.Add(90*time.Minute+5*time.Second))
	require.True(t, fired)
	assert.Equal(t, StateTriggered, tr.From)
	assert.Equal(t, StateNormal, tr.To)
	assert.Equal(t, 90*time.Minute+5*time.Second, tr.Duration)
	assert.Equal(t, StateNormal, m.State())
	assert.True(t, m.Since().IsZero())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "normal", StateNormal.String())
	assert.Equal(t, "triggered", StateTriggered.String())
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{999 * time.Millisecond, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{3661 * time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
		{-5 * time.Second, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHMS(tt.in))
		})
	}
}

func TestEventRecovered(t *testing.T) {
	assert.True(t, Event{Kind: KindLostRecovered}.Recovered())
	assert.True(t, Event{Kind: KindDegradedRecovered}.Recovered())
	assert.False(t, Event{Kind: KindLostTriggered}.Recovered())
	assert.False(t, Event{Kind: KindDegradedTriggered}.Recovered())
}

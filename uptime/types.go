// Package uptime defines core types for the ping monitor.
package uptime

import (
	"time"

	"github.com/amartya2002/pingmonitor/availability"
)

type LogLevel int

const (
	LogNone  LogLevel = iota // no logs
	LogError                 // only errors
	LogInfo                  // info + warnings + errors
	LogDebug                 // per-tick records
)

type Target struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Address  string        `json:"address"`
	Interval time.Duration `json:"interval"`
	Timeout  time.Duration `json:"timeout"`
}

// ProbeResult is what a Prober reports for one echo attempt. A non-nil Err
// means the request could not be sent or the transport failed; Success is
// false with a nil Err when no reply arrived in time.
type ProbeResult struct {
	Success bool
	Latency time.Duration
	Err     error
}

// Result represents the outcome of one tick
type Result struct {
	Target    Target               `json:"target"`
	Timestamp time.Time            `json:"timestamp"`
	Latency   time.Duration        `json:"latency"`
	Success   bool                 `json:"success"`
	Error     string               `json:"error,omitempty"`
	Rate      float64              `json:"rate"`
	Events    []availability.Event `json:"events,omitempty"`
}

// Status is a point-in-time view of the monitor.
type Status struct {
	Target     Target                    `json:"target"`
	Rate       float64                   `json:"rate"`
	Samples    int                       `json:"samples"`
	Capacity   int                       `json:"capacity"`
	Ticks      uint64                    `json:"ticks"`
	Degraded   availability.MachineState `json:"degraded"`
	Lost       availability.MachineState `json:"lost"`
	LastResult *Result                   `json:"last_result,omitempty"`
}

// Package uptime exposes configuration options for the Monitor via a
// functional options API.
package uptime

import (
	"time"

	"go.uber.org/zap"
)

// ===== Options Pattern =====
type Option func(*Monitor)

func WithName(name string) Option {
	return func(m *Monitor) { m.target.Name = name }
}

// WithInterval sets the delay between two ticks.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.target.Interval = d
		}
	}
}

// WithTimeout bounds a single probe.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.target.Timeout = d
		}
	}
}

// WithSamples sets the rolling window capacity.
func WithSamples(n int) Option {
	return func(m *Monitor) { m.samples = n }
}

func WithDegradedThreshold(percent float64) Option {
	return func(m *Monitor) { m.degradedThreshold = percent }
}

func WithLostThreshold(percent float64) Option {
	return func(m *Monitor) { m.lostThreshold = percent }
}

func WithProber(p Prober) Option {
	return func(m *Monitor) { m.prober = p }
}

// WithClock replaces time.Now for result timestamps and transition durations.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogLevel(level LogLevel) Option {
	return func(m *Monitor) { m.logLevel = level }
}

func WithResultBuffer(size int) Option {
	return func(m *Monitor) { m.results = make(chan Result, size) }
}

// enable/disable internal logs
func WithInternalLogs(enabled bool) Option {
	return func(m *Monitor) { m.enableInternalLogs = enabled }
}

// WithZapLogger keeps the console sink and, when filePath is set, adds a
// file sink. Level and sinks go through the same builder as LogFile.
func WithZapLogger(filePath string) Option {
	return func(m *Monitor) {
		if filePath != "" {
			m.logFilesOpt = append(m.logFilesOpt, filePath)
		}
	}
}

// WithLogger allows injecting a custom zap logger (useful in tests).
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		m.logger = l
		m.loggerExplicit = l != nil
	}
}

// LogConsole turns the stdout sink on or off.
func LogConsole(enabled bool) Option {
	return func(m *Monitor) { m.logConsoleOpt = &enabled }
}

// LogFile adds a file sink; repeatable.
func LogFile(path string) Option {
	return func(m *Monitor) { m.logFilesOpt = append(m.logFilesOpt, path) }
}

func DisableLogs() Option {
	return func(m *Monitor) { m.logDisableOpt = true }
}

// WithLogRetention sets the max number of in-memory results kept.
func WithLogRetention(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.logRetention = n
		}
	}
}

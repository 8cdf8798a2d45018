// Package uptime implements the high-level Monitor public API: it drives a
// Prober at a fixed interval, feeds outcomes to an availability.Tracker and
// logs the resulting threshold transitions.
package uptime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amartya2002/pingmonitor/availability"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 120 * time.Millisecond
)

var ErrMissingAddress = errors.New("target address is required")

type Monitor struct {
	target  Target
	prober  Prober
	tracker *availability.Tracker
	now     func() time.Time

	samples           int
	degradedThreshold float64
	lostThreshold     float64

	logLevel     LogLevel
	logRetention int

	enableInternalLogs bool
	logger             *zap.Logger
	loggerExplicit     bool // set when WithLogger/WithZapLogger used

	// logging configuration accumulated by options
	logConsoleOpt *bool
	logFilesOpt   []string
	logDisableOpt bool

	results chan Result
	wg      sync.WaitGroup

	mu       sync.Mutex
	history  []Result
	ticks    uint64
	closed   bool
	started  bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// ===== Constructor =====
func New(address string, opts ...Option) (*Monitor, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrMissingAddress
	}

	m := &Monitor{
		target: Target{
			ID:       uuid.NewString(),
			Name:     address,
			Address:  address,
			Interval: DefaultInterval,
			Timeout:  DefaultTimeout,
		},
		now:               time.Now,
		samples:           availability.DefaultCapacity,
		degradedThreshold: availability.DefaultDegradedThreshold,
		lostThreshold:     availability.DefaultLostThreshold,
		logLevel:          LogInfo,
		logRetention:      100,
		results:           make(chan Result, 100),
		stopCh:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	tracker, err := availability.New(
		availability.WithCapacity(m.samples),
		availability.WithDegradedThreshold(m.degradedThreshold),
		availability.WithLostThreshold(m.lostThreshold),
		availability.WithClock(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid tracker configuration: %w", err)
	}
	m.tracker = tracker

	if m.prober == nil {
		m.prober = NewPingProber(false)
	}

	// Build logger after options applied unless explicitly provided
	if !m.loggerExplicit {
		m.logger = m.buildLoggerFromConfig()
	}
	// Safety fallback
	if m.logger == nil {
		m.logger = defaultConsoleLogger()
	}
	return m, nil
}

func defaultConsoleLogger() *zap.Logger {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (m *Monitor) buildLoggerFromConfig() *zap.Logger {
	if m.logDisableOpt || m.logLevel == LogNone {
		return zap.NewNop()
	}

	// Determine console default: true unless explicitly set to false
	console := true
	if m.logConsoleOpt != nil {
		console = *m.logConsoleOpt
	}

	var paths []string
	seen := map[string]struct{}{}
	if console {
		paths = append(paths, "stdout")
		seen["stdout"] = struct{}{}
	}
	for _, f := range m.logFilesOpt {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		paths = append(paths, f)
	}

	if len(paths) == 0 {
		// No outputs selected: default to console
		paths = []string{"stdout"}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(m.logLevel.zapLevel())
	cfg.OutputPaths = paths
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// ===== Public API =====

// Start runs the tick loop in the background until ctx is done or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.logConfig()
	m.wg.Add(1)
	go m.run(ctx)
	m.ilog("Tick loop started for %s", m.target.Address)
}

// Run is the blocking form of Start; it returns once ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Start(ctx)
	select {
	case <-ctx.Done():
	case <-m.stopCh:
	}
	m.Stop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()

		m.mu.Lock()
		m.closed = true
		close(m.results)
		m.mu.Unlock()

		m.ilog("Monitor stopped")
		_ = m.logger.Sync()
	})
}

// Results channel. Results are dropped when the consumer falls behind.
func (m *Monitor) Results() <-chan Result { return m.results }

// History returns the last limit results, oldest first. limit <= 0 returns all retained.
func (m *Monitor) History(limit int) []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := m.history
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return append([]Result(nil), logs...)
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	rate, _ := m.tracker.Rate()
	st := Status{
		Target:   m.target,
		Rate:     rate,
		Samples:  m.tracker.Len(),
		Capacity: m.tracker.Capacity(),
		Ticks:    m.ticks,
		Degraded: m.tracker.Degraded(),
		Lost:     m.tracker.Lost(),
	}
	if n := len(m.history); n > 0 {
		last := m.history[n-1]
		st.LastResult = &last
	}
	return st
}

func (m *Monitor) Target() Target { return m.target }

func (m *Monitor) Logger() *zap.Logger { return m.logger }

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogDebug:
		return zapcore.DebugLevel
	case LogError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLogLevel maps "none", "error", "info" and "debug" to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return LogNone, nil
	case "error":
		return LogError, nil
	case "", "info", "warn":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	}
	return LogInfo, fmt.Errorf("unknown log level %q", s)
}

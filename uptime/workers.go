package uptime

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amartya2002/pingmonitor/availability"
	"github.com/amartya2002/pingmonitor/internal/metrics"
)

// ===== Tick Loop and Internals =====
func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		m.Tick(ctx)

		timer := time.NewTimer(m.target.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.ilog("Context done, leaving tick loop")
			return
		case <-m.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Tick performs one probe, records its outcome and logs any transitions.
// Ticks must not overlap; Start guarantees this for the background loop.
func (m *Monitor) Tick(ctx context.Context) Result {
	probeCtx, cancel := context.WithTimeout(ctx, m.target.Timeout)
	pr := m.prober.Probe(probeCtx, m.target.Address)
	cancel()

	now := m.now()
	m.mu.Lock()
	events := m.tracker.RecordAt(pr.Success, now)
	rate, _ := m.tracker.Rate()
	m.ticks++
	degraded, lost := m.tracker.Degraded(), m.tracker.Lost()
	m.mu.Unlock()

	res := Result{
		Target:    m.target,
		Timestamp: now,
		Success:   pr.Success,
		Rate:      rate,
		Events:    events,
	}
	if pr.Success {
		res.Latency = pr.Latency
	}
	if pr.Err != nil {
		res.Error = pr.Err.Error()
	}

	m.logTick(res, pr)
	for _, e := range events {
		m.logEvent(e)
	}
	m.saveLog(res)
	m.publish(res)

	metrics.ObserveProbe(m.target.Address, pr.Success, res.Latency)
	metrics.SetRate(m.target.Address, rate)
	metrics.SetTriggered(m.target.Address, degraded.Name, degraded.Triggered)
	metrics.SetTriggered(m.target.Address, lost.Name, lost.Triggered)
	for _, e := range events {
		metrics.ObserveTransition(m.target.Address, string(e.Kind))
	}
	return res
}

func (m *Monitor) saveLog(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, res)
	if len(m.history) > m.logRetention {
		m.history = m.history[len(m.history)-m.logRetention:]
	}
}

func (m *Monitor) publish(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.results <- res:
	default:
		m.ilog("Results channel full, dropped result at %s", res.Timestamp.Format(time.RFC3339))
	}
}

func (m *Monitor) enabled(level zapcore.Level) bool {
	return m.logLevel != LogNone && level >= m.logLevel.zapLevel()
}

func (m *Monitor) logConfig() {
	if !m.enabled(zapcore.InfoLevel) {
		return
	}
	m.logger.Info("pingmonitor starting")
	m.logger.Info("Monitor configuration",
		zap.String("address", m.target.Address),
		zap.Int("rate_count_max", m.tracker.Capacity()),
		zap.Duration("repeat_delay", m.target.Interval),
		zap.Duration("timeout", m.target.Timeout),
		zap.Float64("degraded_threshold_percent", m.tracker.Degraded().Threshold),
		zap.Float64("lost_threshold_percent", m.tracker.Lost().Threshold))
}

// logTick emits the per-tick debug record: latency in seconds (0.000 on
// failure) and the refreshed rate.
func (m *Monitor) logTick(res Result, pr ProbeResult) {
	if !m.enabled(zapcore.DebugLevel) {
		return
	}
	msg := "Reply succeeded"
	switch {
	case pr.Err != nil:
		msg = "Send failed"
	case !pr.Success:
		msg = "Reply failed"
	}
	fields := []zap.Field{
		zap.String("address", res.Target.Address),
		zap.String("latency", fmt.Sprintf("%.3f", res.Latency.Seconds())),
		zap.String("rate", fmt.Sprintf("%.2f", res.Rate)),
	}
	if res.Error != "" {
		fields = append(fields, zap.String("error", res.Error))
	}
	m.logger.Debug(msg, fields...)
}

func (m *Monitor) logEvent(e availability.Event) {
	level := EventLevel(e.Kind)
	if !m.enabled(level) {
		return
	}
	fields := []zap.Field{
		zap.String("address", m.target.Address),
		zap.String("event", string(e.Kind)),
		zap.String("latency", "0.000"),
		zap.String("rate", fmt.Sprintf("%.2f", e.Rate)),
	}
	if e.Recovered() {
		fields = append(fields, zap.String("duration", e.DurationHMS()))
	}
	if ce := m.logger.Check(level, EventMessage(e.Kind)); ce != nil {
		ce.Write(fields...)
	}
}

// EventLevel maps a transition to its log severity. Recovery from lost
// service is logged as an error while its onset is only a warning.
func EventLevel(k availability.Kind) zapcore.Level {
	if k == availability.KindLostRecovered {
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

func EventMessage(k availability.Kind) string {
	switch k {
	case availability.KindDegradedTriggered:
		return "Service degraded"
	case availability.KindDegradedRecovered:
		return "Service degradation ended"
	case availability.KindLostTriggered:
		return "Service lost"
	case availability.KindLostRecovered:
		return "Service loss ended"
	}
	return string(k)
}

// ===== Internal Logging Helper =====
func (m *Monitor) ilog(format string, args ...interface{}) {
	if m.enableInternalLogs {
		m.logger.Info(fmt.Sprintf("[INTERNAL] "+format, args...))
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels probes that got an echo reply.
	OutcomeSuccess = "success"
	// OutcomeFailure labels probes that timed out or failed to send.
	OutcomeFailure = "failure"
)

var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingmonitor",
			Name:      "probes_total",
			Help:      "Total number of ICMP probes, partitioned by outcome.",
		},
		[]string{"target", "outcome"},
	)

	probeLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pingmonitor",
			Name:      "probe_latency_seconds",
			Help:      "Round-trip time of successful probes in seconds.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.12, 0.25},
		},
		[]string{"target"},
	)

	successRatePercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pingmonitor",
			Name:      "success_rate_percent",
			Help:      "Success rate over the current rolling window.",
		},
		[]string{"target"},
	)

	thresholdTriggered = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pingmonitor",
			Name:      "threshold_triggered",
			Help:      "1 while the named threshold machine is triggered, 0 otherwise.",
		},
		[]string{"target", "threshold"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingmonitor",
			Name:      "transitions_total",
			Help:      "Threshold transitions, partitioned by event kind.",
		},
		[]string{"target", "kind"},
	)
)

// Register attaches pingmonitor collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		probesTotal,
		probeLatencySeconds,
		successRatePercent,
		thresholdTriggered,
		transitionsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveProbe counts one probe and, on success, records its latency.
func ObserveProbe(target string, success bool, latency time.Duration) {
	label := OutcomeFailure
	if success {
		label = OutcomeSuccess
		if latency < 0 {
			latency = 0
		}
		probeLatencySeconds.WithLabelValues(target).Observe(latency.Seconds())
	}
	probesTotal.WithLabelValues(target, label).Inc()
}

func SetRate(target string, rate float64) {
	successRatePercent.WithLabelValues(target).Set(rate)
}

func SetTriggered(target, threshold string, triggered bool) {
	v := 0.0
	if triggered {
		v = 1
	}
	thresholdTriggered.WithLabelValues(target, threshold).Set(v)
}

func ObserveTransition(target, kind string) {
	transitionsTotal.WithLabelValues(target, kind).Inc()
}

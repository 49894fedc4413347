package fetch

import (
	"time"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a fetch, used as metric label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Metrics collects the fetch statistics of one run in its own registry.
type Metrics struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewMetrics creates Metrics with a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "plan_diff",
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of EXPLAIN on a target.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"target"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plan_diff",
			Subsystem: "fetch",
			Name:      "total",
			Help:      "Number of EXPLAIN on a target by outcome.",
		}, []string{"target", "outcome"}),
	}
}

func (m *Metrics) observe(label, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	m.outcomes.WithLabelValues(label, outcome).Inc()
}

// Registry returns the registry of the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the metrics in the text exposition format, to be
// picked up by the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return errors.Annotatef(
		prometheus.WriteToTextfile(path, m.registry),
		"write metrics to %s", path,
	)
}

// Package metrics exposes Prometheus collectors for journal activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "continuum"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// DecisionsTotal counts record mutations.
	// Labels: op (captured, edited, deleted, imported)
	DecisionsTotal *prometheus.CounterVec

	// InsightRuns counts insight tasks by kind.
	InsightRuns *prometheus.CounterVec

	// InsightsProduced counts insights delivered by kind.
	InsightsProduced *prometheus.CounterVec

	// QueryDuration tracks query pipeline latency.
	QueryDuration prometheus.Histogram

	// ImportFailures counts rejected import documents.
	ImportFailures prometheus.Counter
}

// New registers a fresh set of collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "journal",
				Name:      "decisions_total",
				Help:      "Total number of decision record mutations by operation",
			},
			[]string{"op"},
		),
		InsightRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "insights",
				Name:      "runs_total",
				Help:      "Total number of insight tasks started by kind",
			},
			[]string{"kind"},
		),
		InsightsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "insights",
				Name:      "produced_total",
				Help:      "Total number of insights delivered by kind",
			},
			[]string{"kind"},
		),
		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "duration_seconds",
				Help:      "Duration of query operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ImportFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "journal",
				Name:      "import_failures_total",
				Help:      "Total number of rejected import documents",
			},
		),
	}
	m.registry.MustRegister(m.DecisionsTotal, m.InsightRuns, m.InsightsProduced, m.QueryDuration, m.ImportFailures)
	return m
}

// ObserveQuery records the time since start.
func (m *Metrics) ObserveQuery(start time.Time) {
	m.QueryDuration.Observe(time.Since(start).Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

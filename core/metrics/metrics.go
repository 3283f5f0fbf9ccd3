package metrics

import (
	"net/http"
	"time"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog_sync"

// Metrics holds the collectors for import runs.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	imports     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry that also carries the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "resolutions_total",
			Help:      "Snapshot entities resolved, by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Import runs, by scope and status.",
		}, []string{"scope", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Import run duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scope"}),
	}
	reg.MustRegister(m.resolutions, m.imports, m.duration)
	return m
}

// Observe implements reconcile.Observer.
func (m *Metrics) Observe(kind store.Kind, outcome reconcile.Outcome) {
	m.resolutions.WithLabelValues(string(kind), string(outcome)).Inc()
}

// ObserveImport records one finished import run.
func (m *Metrics) ObserveImport(scope reconcile.Scope, err error, took time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.imports.WithLabelValues(string(scope), status).Inc()
	m.duration.WithLabelValues(string(scope)).Observe(took.Seconds())
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

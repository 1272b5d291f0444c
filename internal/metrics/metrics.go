// Package metrics exposes fsview's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tree build modes.
const (
	ModeList    = "list"
	ModeProject = "project"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Watch metrics
	ActiveWatches prometheus.Gauge
	ChangeEvents  *prometheus.CounterVec
	EventsDropped prometheus.Counter

	// Tree metrics
	TreeBuilds        *prometheus.CounterVec
	TreeBuildDuration *prometheus.HistogramVec

	// Transport metrics
	RequestsTotal *prometheus.CounterVec
	WSConnections prometheus.Gauge
}

// New creates the metrics on a dedicated registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ActiveWatches: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsview_active_watches",
				Help: "Number of watched root paths",
			},
		),
		ChangeEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsview_change_events_total",
				Help: "Total number of filesystem change events by kind",
			},
			[]string{"kind"},
		),
		EventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fsview_events_dropped_total",
				Help: "Total number of event deliveries dropped for slow subscribers",
			},
		),

		TreeBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsview_tree_builds_total",
				Help: "Total number of tree builds by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		TreeBuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsview_tree_build_duration_seconds",
				Help:    "Tree build duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"mode"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsview_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fsview_ws_connections",
				Help: "Number of open event stream connections",
			},
		),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SetActiveWatches records the number of watched roots.
func (m *Metrics) SetActiveWatches(n int) {
	if m == nil {
		return
	}
	m.ActiveWatches.Set(float64(n))
}

// CountEvent records one change event of kind.
func (m *Metrics) CountEvent(kind string) {
	if m == nil {
		return
	}
	m.ChangeEvents.WithLabelValues(kind).Inc()
}

// CountDropped records one dropped event delivery.
func (m *Metrics) CountDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

// ObserveTreeBuild records one tree build.
func (m *Metrics) ObserveTreeBuild(mode string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TreeBuilds.WithLabelValues(mode, status).Inc()
	m.TreeBuildDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// WSConnected records an event stream connection opening.
func (m *Metrics) WSConnected() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// WSDisconnected records an event stream connection closing.
func (m *Metrics) WSDisconnected() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

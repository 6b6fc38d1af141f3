// Package metrics provides Prometheus metrics collection for the trend
// dashboard. It defines and manages the serving, parsing and artifact-sync
// metrics exposed via the Prometheus metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Serving metrics
	PanelViews          *prometheus.CounterVec // Panel views by panel slug
	PanelRenderDuration prometheus.Histogram   // Panel render latency in seconds
	WSClients           prometheus.Gauge       // Currently connected websocket clients

	// Report parsing metrics
	ReportParses        prometheus.Counter // Total classification report parses
	ReportParseFailures prometheus.Counter // Total classification report parse failures

	// Artifact metrics
	ArtifactSyncs        prometheus.Counter // Total artifacts mirrored from the pipeline
	ArtifactSyncFailures prometheus.Counter // Total artifact mirror failures
	ArtifactRefreshes    prometheus.Counter // Total artifact change events broadcast

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
// This is the standard way to create metrics for production use.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PanelViews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "panel_views_total",
			Help: "Total number of panel views by panel slug",
		}, []string{"panel"}),
		PanelRenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "panel_render_duration_seconds",
			Help:    "Panel render latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Currently connected websocket clients",
		}),
		ReportParses: factory.NewCounter(prometheus.CounterOpts{
			Name: "report_parses_total",
			Help: "Total number of classification report parses",
		}),
		ReportParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "report_parse_failures_total",
			Help: "Total number of classification report parse failures",
		}),
		ArtifactSyncs: factory.NewCounter(prometheus.CounterOpts{
			Name: "artifact_syncs_total",
			Help: "Total number of artifacts mirrored from the pipeline",
		}),
		ArtifactSyncFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "artifact_sync_failures_total",
			Help: "Total number of artifact mirror failures",
		}),
		ArtifactRefreshes: factory.NewCounter(prometheus.CounterOpts{
			Name: "artifact_refreshes_total",
			Help: "Total number of artifact change events broadcast",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}

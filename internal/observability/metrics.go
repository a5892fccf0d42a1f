package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crowdmap"

// Metrics holds the Prometheus counters, histograms, and gauges for the crowd service.
type Metrics struct {
	// Place source metrics.
	PlaceFetches *prometheus.CounterVec // labels: outcome={live,synthetic,cache}
	PlacesServed prometheus.Histogram

	// Third-party API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider={mapbox,besttime,overpass}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: provider
	GeocodeCache     *prometheus.CounterVec   // labels: method={suggest,reverse}, result={hit,miss}
	ProviderEnabled  *prometheus.GaugeVec     // labels: provider

	// Recompute pipeline metrics.
	SnapshotsComputed  prometheus.Counter
	SnapshotsPublished prometheus.Counter
	SinkErrors         prometheus.Counter
	SnapshotPoints     prometheus.Histogram
	SnapshotDuration   prometheus.Histogram
	PipelineRunning    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PlaceFetches,
		m.PlacesServed,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.GeocodeCache,
		m.ProviderEnabled,
		m.SnapshotsComputed,
		m.SnapshotsPublished,
		m.SinkErrors,
		m.SnapshotPoints,
		m.SnapshotDuration,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PlaceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "place_fetches_total",
			Help:      "Place list fetches by outcome.",
		}, []string{"outcome"}),
		PlacesServed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "places_per_fetch",
			Help:      "Number of places returned per fetch.",
			Buckets:   []float64{1, 5, 10, 15, 18, 20},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Third-party API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Third-party API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		ProviderEnabled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_enabled",
			Help:      "1 when a third-party provider is configured, 0 otherwise.",
		}, []string{"provider"}),
		SnapshotsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_computed_total",
			Help:      "Total crowd snapshots computed by the recompute loop.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Total crowd snapshots handed to the snapshot sink.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Total snapshot sink failures.",
		}),
		SnapshotPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_points",
			Help:      "Heatmap points per computed snapshot.",
			Buckets:   []float64{10, 25, 50, 100, 150, 200, 260},
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Duration of a complete refresh-and-recompute cycle.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the recompute loop is active, 0 when shut down.",
		}),
	}
}

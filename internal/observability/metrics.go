package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// wildfire search pipeline.
type Metrics struct {
	ScansProcessed prometheus.Counter
	ScansSkipped   prometheus.Counter
	WildfiresFound prometheus.Counter
	InvalidFiles   prometheus.Counter
	EngineRunning  prometheus.Gauge

	ScanProcessingDuration prometheus.Histogram

	// Archive retrieval metrics.
	Downloads        *prometheus.CounterVec // labels: outcome={success,error}
	DownloadDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScansProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "scans_processed_total",
			Help:      "Total scan groups classified, positive or not.",
		}),
		ScansSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "scans_skipped_total",
			Help:      "Total malformed scan groups excluded from results.",
		}),
		WildfiresFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "wildfires_found_total",
			Help:      "Total scan groups that tested positive for wildfire.",
		}),
		InvalidFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "invalid_files_total",
			Help:      "Total object keys that failed filename parsing.",
		}),
		EngineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildfire",
			Name:      "engine_running",
			Help:      "1 while a batch search is active, 0 otherwise.",
		}),
		ScanProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire",
			Name:      "scan_processing_duration_seconds",
			Help:      "Duration of one assemble-rescale-classify task.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildfire",
			Name:      "downloads_total",
			Help:      "Archive downloads by outcome.",
		}, []string{"outcome"}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wildfire",
			Name:      "download_duration_seconds",
			Help:      "Archive object download duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.ScansProcessed,
		m.ScansSkipped,
		m.WildfiresFound,
		m.InvalidFiles,
		m.EngineRunning,
		m.ScanProcessingDuration,
		m.Downloads,
		m.DownloadDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ScansProcessed:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire", Name: "scans_processed_total"}),
		ScansSkipped:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire", Name: "scans_skipped_total"}),
		WildfiresFound:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire", Name: "wildfires_found_total"}),
		InvalidFiles:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wildfire", Name: "invalid_files_total"}),
		EngineRunning:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wildfire", Name: "engine_running"}),
		ScanProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire", Name: "scan_processing_duration_seconds"}),
		Downloads:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wildfire", Name: "downloads_total"}, []string{"outcome"}),
		DownloadDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wildfire", Name: "download_duration_seconds"}),
	}
}

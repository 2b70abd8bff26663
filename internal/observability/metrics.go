package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// collector.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec // labels: mode={periodic,races}
	EntriesAttempted prometheus.Counter
	EntriesSucceeded prometheus.Counter
	EntriesFailed    *prometheus.CounterVec // labels: reason={venue_unknown,fetch,timestamp_not_found,persistence,other}

	FetchDuration   prometheus.Histogram
	PersistDuration prometheus.Histogram
	RunDuration     prometheus.Histogram

	CollectorRunning prometheus.Gauge
	LastRunUnixtime  prometheus.Gauge
}

// NewMetrics creates and registers all collector metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turf_weather",
			Name:      "runs_total",
			Help:      "Collection runs started, by mode.",
		}, []string{"mode"}),
		EntriesAttempted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turf_weather",
			Name:      "entries_attempted_total",
			Help:      "Venues or race entries processed.",
		}),
		EntriesSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turf_weather",
			Name:      "entries_succeeded_total",
			Help:      "Entries fetched, derived, and persisted successfully.",
		}),
		EntriesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turf_weather",
			Name:      "entries_failed_total",
			Help:      "Entries skipped, by failure reason.",
		}, []string{"reason"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turf_weather",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one hourly-series fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		PersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turf_weather",
			Name:      "persist_duration_seconds",
			Help:      "Duration of one snapshot upsert.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turf_weather",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete collection run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "turf_weather",
			Name:      "collector_running",
			Help:      "1 while a collection run is in progress.",
		}),
		LastRunUnixtime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "turf_weather",
			Name:      "last_run_unixtime",
			Help:      "Completion time of the most recent run.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.EntriesAttempted,
		m.EntriesSucceeded,
		m.EntriesFailed,
		m.FetchDuration,
		m.PersistDuration,
		m.RunDuration,
		m.CollectorRunning,
		m.LastRunUnixtime,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "turf_weather", Name: "runs_total"}, []string{"mode"}),
		EntriesAttempted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "turf_weather", Name: "entries_attempted_total"}),
		EntriesSucceeded: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "turf_weather", Name: "entries_succeeded_total"}),
		EntriesFailed:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "turf_weather", Name: "entries_failed_total"}, []string{"reason"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "turf_weather", Name: "fetch_duration_seconds"}),
		PersistDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "turf_weather", Name: "persist_duration_seconds"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "turf_weather", Name: "run_duration_seconds"}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "turf_weather", Name: "collector_running"}),
		LastRunUnixtime:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "turf_weather", Name: "last_run_unixtime"}),
	}
}

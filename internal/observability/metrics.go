package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a report run.
type Metrics struct {
	RecordsRead       prometheus.Counter
	RecordsAggregated prometheus.Counter
	RecordsSkipped    prometheus.Counter
	EventTypes        prometheus.Gauge
	ReportReady       prometheus.Gauge
	RunDuration       prometheus.Histogram

	// Presentation metrics.
	PresenterErrors   *prometheus.CounterVec // labels: presenter
	MessagesPublished prometheus.Counter

	// Dataset acquisition.
	DownloadDuration prometheus.Histogram
	DownloadBytes    prometheus.Counter
}

// NewMetrics creates and registers all report metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsRead,
		m.RecordsAggregated,
		m.RecordsSkipped,
		m.EventTypes,
		m.ReportReady,
		m.RunDuration,
		m.PresenterErrors,
		m.MessagesPublished,
		m.DownloadDuration,
		m.DownloadBytes,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "records_read_total",
			Help:      "Total rows read from the dataset.",
		}),
		RecordsAggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "records_aggregated_total",
			Help:      "Total rows folded into event summaries.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "records_skipped_total",
			Help:      "Total malformed rows skipped.",
		}),
		EventTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_report",
			Name:      "event_types",
			Help:      "Distinct event types in the last report.",
		}),
		ReportReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_report",
			Name:      "report_ready",
			Help:      "1 once a report has been built, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_report",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-aggregate-present run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PresenterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "presenter_errors_total",
			Help:      "Presenter failures by presenter name.",
		}, []string{"presenter"}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "messages_published_total",
			Help:      "Ranking messages written to the report topic.",
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_report",
			Name:      "download_duration_seconds",
			Help:      "Duration of dataset downloads.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_report",
			Name:      "download_bytes_total",
			Help:      "Bytes written to the local dataset cache.",
		}),
	}
}

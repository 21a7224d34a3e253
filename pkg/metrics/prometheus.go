package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal  *prometheus.CounterVec
	strategies  *prometheus.HistogramVec
	quotesTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		scansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optionstrat_scans_total",
				Help: "Total number of strategy scans by risk profile and outcome",
			},
			[]string{"profile", "outcome"},
		),
		strategies: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "optionstrat_scan_strategies",
				Help:    "Number of strategies returned per scan",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 10, 15, 20},
			},
			[]string{"profile"},
		),
		quotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optionstrat_quotes_total",
				Help: "Total number of quotes resolved by source",
			},
			[]string{"source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optionstrat_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "optionstrat_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScan records a finished scan.
func (r *Recorder) RecordScan(profile, outcome string, strategies int) {
	r.scansTotal.WithLabelValues(profile, outcome).Inc()
	r.strategies.WithLabelValues(profile).Observe(float64(strategies))
}

// RecordQuote records where a quote came from.
func (r *Recorder) RecordQuote(source string) {
	r.quotesTotal.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordScan(string, string, int) {}
func (Nop) RecordQuote(string)             {}
func (Nop) RecordError(string)             {}
func (Nop) RecordLatency(string, float64)  {}

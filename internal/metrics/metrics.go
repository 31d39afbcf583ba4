package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wonny/bist-swing/internal/contracts"
)

// Metrics holds the Prometheus collectors for scans
type Metrics struct {
	ScansTotal      *prometheus.CounterVec // labels: outcome=completed|cancelled
	ScanDuration    prometheus.Histogram
	TickersScored   prometheus.Counter
	TickersSkipped  *prometheus.CounterVec // labels: kind
	FetchDuration   prometheus.Histogram
	ScoreHistogram  prometheus.Histogram
	ScanInFlight    prometheus.Gauge
	LastScanResults prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swing_scans_total",
			Help: "Scans finished, by outcome",
		}, []string{"outcome"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "swing_scan_duration_seconds",
			Help:    "Wall time of a full scan",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		TickersScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swing_tickers_scored_total",
			Help: "Tickers that produced a score",
		}),
		TickersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swing_tickers_skipped_total",
			Help: "Tickers skipped, by error kind",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "swing_fetch_duration_seconds",
			Help:    "Per-ticker history fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		ScoreHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "swing_composite_score",
			Help:    "Distribution of composite scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		ScanInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swing_scan_in_flight",
			Help: "1 while a scan is running",
		}),
		LastScanResults: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swing_last_scan_results",
			Help: "Ranked results in the most recent scan",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ScansTotal,
			m.ScanDuration,
			m.TickersScored,
			m.TickersSkipped,
			m.FetchDuration,
			m.ScoreHistogram,
			m.ScanInFlight,
			m.LastScanResults,
		)
	}
	return m
}

// ObserveResult records one scored ticker
func (m *Metrics) ObserveResult(r *contracts.ScoreResult) {
	m.TickersScored.Inc()
	m.ScoreHistogram.Observe(float64(r.CompositeScore))
}

// ObserveSkip records one skipped ticker
func (m *Metrics) ObserveSkip(s *contracts.SkipRecord) {
	m.TickersSkipped.WithLabelValues(string(s.Kind)).Inc()
}

// ObserveReport records a finished scan
func (m *Metrics) ObserveReport(r *contracts.ScanReport) {
	outcome := "completed"
	if r.Cancelled {
		outcome = "cancelled"
	}
	m.ScansTotal.WithLabelValues(outcome).Inc()
	m.ScanDuration.Observe(r.FinishedAt.Sub(r.StartedAt).Seconds())
	m.LastScanResults.Set(float64(len(r.Results)))
}

package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/vaultlint/internal/report"
)

// Metrics holds the server's collectors on a registry of its own, so
// several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	runs     prometheus.Counter
	findings *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultlint_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultlint_report_runs_total",
			Help: "Consistency report runs.",
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultlint_findings_total",
			Help: "Findings emitted by report runs, by category.",
		}, []string{"category"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaultlint_report_duration_seconds",
			Help:    "Duration of consistency report runs.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.registry.MustRegister(m.requests, m.runs, m.findings, m.duration)
	return m
}

// ObserveReport records one finished report run.
func (m *Metrics) ObserveReport(rep *report.Report, took time.Duration) {
	m.runs.Inc()
	m.duration.Observe(took.Seconds())
	for _, f := range rep.Findings {
		m.findings.WithLabelValues(string(f.Category)).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service counters. Each instance owns its registry so
// tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	CodesIssued     *prometheus.CounterVec
	CodeVerifies    *prometheus.CounterVec
	EntriesRecorded *prometheus.CounterVec
	PointsAwarded   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CodesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotrack",
			Name:      "otp_codes_issued_total",
			Help:      "One-time codes issued, by reason.",
		}, []string{"reason"}),
		CodeVerifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotrack",
			Name:      "otp_verifications_total",
			Help:      "Code verification attempts, by outcome.",
		}, []string{"outcome"}),
		EntriesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecotrack",
			Name:      "carbon_entries_total",
			Help:      "Carbon entries recorded, by activity type.",
		}, []string{"activity_type"}),
		PointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecotrack",
			Name:      "points_awarded_total",
			Help:      "Sum of positive points awarded.",
		}),
	}
	reg.MustRegister(
		m.CodesIssued,
		m.CodeVerifies,
		m.EntriesRecorded,
		m.PointsAwarded,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns an http.Handler for Prometheus scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records submissions and their outcomes.
type Metrics struct {
	registry *prometheus.Registry

	submissions *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
	days        prometheus.Histogram
}

// NewMetrics creates the collectors on a fresh registry.
// Go runtime and process collectors are included when withRuntime is set.
func NewMetrics(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripreel_submissions_total",
				Help: "Total number of accepted itinerary submissions",
			},
			[]string{"source"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripreel_resolutions_total",
				Help: "Resolved submissions by phase and failure kind",
			},
			[]string{"phase", "kind", "stale"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tripreel_generate_duration_seconds",
				Help:    "Time from submission to resolution",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120},
			},
			[]string{"phase"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripreel_requests_in_flight",
			Help: "Submissions waiting for the backend",
		}),
		days: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripreel_itinerary_days",
			Help:    "Number of days in successful itineraries",
			Buckets: prometheus.LinearBuckets(0, 1, 15),
		}),
	}
	m.registry.MustRegister(m.submissions, m.resolutions, m.duration, m.inFlight, m.days)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the collectors.
// source labels the submission counter (e.g. "cli", "web", "mcp").
func (m *Metrics) Hooks(source string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSubmit: func(_ context.Context, _ *domain.SubmitEvent) {
			m.submissions.WithLabelValues(source).Inc()
			m.inFlight.Inc()
		},
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			m.inFlight.Dec()
			stale := "false"
			if e.Stale {
				stale = "true"
			}
			m.resolutions.WithLabelValues(string(e.Phase), e.Kind.String(), stale).Inc()
			m.duration.WithLabelValues(string(e.Phase)).Observe(e.Duration.Seconds())
			if e.Phase == domain.PhaseSuccess && !e.Stale {
				m.days.Observe(float64(e.Days))
			}
		},
	}
}

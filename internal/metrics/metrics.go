package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	fetches      *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	globalPoints prometheus.Gauge
	priceUSD     prometheus.Gauge
}

// New creates and registers all collectors under the given namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "stakescope"
	}
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Outbound fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of outbound fetches in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		globalPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_points",
			Help:      "Last-known global staking points total.",
		}),
		priceUSD: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_usd",
			Help:      "Last fetched asset price in USD.",
		}),
	}
	registry.MustRegister(m.fetches, m.durations, m.globalPoints, m.priceUSD)
	return m
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(source, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, outcome).Inc()
	m.durations.WithLabelValues(source).Observe(took.Seconds())
}

func (m *Metrics) SetGlobalPoints(v float64) {
	if m == nil {
		return
	}
	m.globalPoints.Set(v)
}

func (m *Metrics) SetPrice(v float64) {
	if m == nil {
		return
	}
	m.priceUSD.Set(v)
}

// Registry exposes the underlying registry, mainly for tests. It returns nil
// for a nil *Metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus instrumentation for shopcore.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for the mutation layer. Outcome labels:
// "ok", "denied" (auth or permission failures), "invalid" (bad input or
// bad token), "not_found", "error" (upstream failures).
type Metrics struct {
	registry *prometheus.Registry

	// Mutations counts mutation calls by operation and outcome.
	Mutations *prometheus.CounterVec

	// HTTPRequests counts HTTP requests by method, route, and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency by route.
	HTTPDuration *prometheus.HistogramVec

	// MailsSent counts outbound mails by outcome.
	MailsSent *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcore",
			Name:      "mutations_total",
			Help:      "Mutation calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcore",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopcore",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		MailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcore",
			Name:      "mails_sent_total",
			Help:      "Outbound mails by outcome.",
		}, []string{"outcome"}),
	}
}

// RecordMutation increments the mutation counter.
func (m *Metrics) RecordMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, outcome).Inc()
}

// RecordMail increments the outbound mail counter.
func (m *Metrics) RecordMail(outcome string) {
	if m == nil {
		return
	}
	m.MailsSent.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

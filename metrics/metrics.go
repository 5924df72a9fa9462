// Package metrics provides Prometheus metrics collection for HTTP server
// monitoring. It exports three metric series:
//   - http_requests_total: Counter with method, endpoint, and status labels
//   - http_errors_total: Counter with endpoint and error_type labels
//   - http_request_duration_seconds: Histogram with method and endpoint labels
//
// The registry is explicitly constructed and injected rather than registered
// on the Prometheus default registry, so tests get isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the HTTP metric series with the Prometheus registry they
// are registered on. One instance is built in main and passed to the request
// tracker middleware and the /metrics handler.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry builds the registry with the HTTP series plus Go runtime and
// process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Total HTTP errors",
			},
			[]string{"endpoint", "error_type"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "endpoint"},
		),
	}

	r.registry.MustRegister(
		r.RequestsTotal,
		r.ErrorsTotal,
		r.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Handler returns the text exposition handler for GET /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for exposition tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

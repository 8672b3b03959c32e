package reportapi

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for backend request observability.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec // Requests by operation
	ErrorsTotal   *prometheus.CounterVec // Failed requests by operation
}

// NewMetrics creates Prometheus metrics for a backend client instance.
// The registerer parameter allows flexible registration (e.g., global
// registry, test registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vigia_backend_requests_total",
		Help: "Total number of requests issued to the incident backend",
	}, []string{"operation"})

	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vigia_backend_errors_total",
		Help: "Total number of failed incident backend requests",
	}, []string{"operation"})

	reg.MustRegister(requestsTotal)
	reg.MustRegister(errorsTotal)

	return &Metrics{
		RequestsTotal: requestsTotal,
		ErrorsTotal:   errorsTotal,
	}
}

// observe records one request and, if it failed, one error.
func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation).Inc()
	if err != nil {
		m.ErrorsTotal.WithLabelValues(operation).Inc()
	}
}

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics for the gateway.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	EmptyAnswers  *prometheus.CounterVec
}

// New creates and registers all gateway metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brpgateway_requests_total",
			Help: "Total handled REST requests by resource and status",
		}, []string{"resource", "status"}),

		EmptyAnswers: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brpgateway_empty_answers_total",
			Help: "Total MKS answers without a usable object by resource",
		}, []string{"resource"}),
	}
}

// IncrementRequests records one handled request.
func (m *Metrics) IncrementRequests(resource string, status int) {
	if m != nil {
		m.RequestsTotal.WithLabelValues(resource, strconv.Itoa(status)).Inc()
	}
}

// IncrementEmptyAnswers records an answer that produced no object.
func (m *Metrics) IncrementEmptyAnswers(resource string) {
	if m != nil {
		m.EmptyAnswers.WithLabelValues(resource).Inc()
	}
}

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts audit deliveries per sink. All methods are nil-safe so
// tests can pass a nil collector.
type Metrics struct {
	EventsPublished *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_events_published_total",
			Help: "Audit events delivered, by sink.",
		}, []string{"sink"}),
		PublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_publish_failures_total",
			Help: "Audit events that could not be delivered, by sink.",
		}, []string{"sink"}),
	}
}

func (m *Metrics) IncrementEventsPublished(sink string) {
	if m == nil || m.EventsPublished == nil {
		return
	}
	m.EventsPublished.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncrementPublishFailures(sink string) {
	if m == nil || m.PublishFailures == nil {
		return
	}
	m.PublishFailures.WithLabelValues(sink).Inc()
}

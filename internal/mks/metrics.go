package mks

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the MKS transport.
type Metrics struct {
	CallLatency *prometheus.HistogramVec
	CallErrors  *prometheus.CounterVec
}

// New creates a new Metrics instance with all transport metrics registered.
func New() *Metrics {
	return &Metrics{
		CallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brpgateway_mks_call_duration_seconds",
			Help:    "Duration of MKS SOAP calls by action and status",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"action", "status"}),

		CallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brpgateway_mks_call_errors_total",
			Help: "Total transport-level MKS call failures by action",
		}, []string{"action"}),
	}
}

// ObserveCallLatency records the duration of one completed MKS call.
func (m *Metrics) ObserveCallLatency(action string, status int, d time.Duration) {
	if m != nil {
		m.CallLatency.WithLabelValues(action, strconv.Itoa(status)).Observe(d.Seconds())
	}
}

// IncrementCallErrors records a call that failed before a status was read.
func (m *Metrics) IncrementCallErrors(action string) {
	if m != nil {
		m.CallErrors.WithLabelValues(action).Inc()
	}
}

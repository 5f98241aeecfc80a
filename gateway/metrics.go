package gateway

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK       = "ok"
	outcomeStatus   = "http_error"
	outcomeNetwork  = "network_error"
	outcomeRejected = "rejected"
)

// Metrics counts gateway calls per operation and outcome. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heywrite",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Backend calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "heywrite",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Backend call latency by operation.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcomeOf(err)).Inc()
	if !errors.Is(err, ErrValidation) {
		m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, ErrValidation) {
		return outcomeRejected
	}
	if StatusCode(err) > 0 {
		return outcomeStatus
	}
	return outcomeNetwork
}

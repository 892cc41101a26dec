package omsbridge

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records transport activity. A nil *Metrics records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the transport collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omsbridge",
				Subsystem: "transport",
				Name:      "requests_total",
				Help:      "Requests sent to the OMS, by backend, method and status.",
			},
			[]string{"backend", "method", "status"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "omsbridge",
				Subsystem: "transport",
				Name:      "cache_hits_total",
				Help:      "Requests answered from the response cache.",
			},
			[]string{"backend"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "omsbridge",
				Subsystem: "transport",
				Name:      "request_duration_seconds",
				Help:      "Duration of OMS requests.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
			},
			[]string{"backend", "method"},
		),
	}
	reg.MustRegister(m.requests, m.cacheHits, m.duration)
	return m
}

func (m *Metrics) observe(kind BackendKind, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(kind.String(), method, code).Inc()
	m.duration.WithLabelValues(kind.String(), method).Observe(elapsed.Seconds())
}

func (m *Metrics) cacheHit(kind BackendKind) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(kind.String()).Inc()
}

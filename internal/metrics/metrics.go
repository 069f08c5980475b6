// Package metrics exposes Prometheus instruments for gateway traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ninepay"

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeTransport = "transport_error"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	verifications *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Gateway operations by outcome.",
	}, []string{"operation", "outcome"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Round trip time of gateway API calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checksum_verifications_total",
		Help:      "Inbound result checksum verifications.",
	}, []string{"valid"})
	registry.MustRegister(requests, durations, verifications)

	return &Recorder{
		registry:      registry,
		requests:      requests,
		durations:     durations,
		verifications: verifications,
	}
}

func (r *Recorder) ObserveRequest(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(operation, outcome).Inc()
	if elapsed > 0 {
		r.durations.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) ObserveVerification(valid bool) {
	if r == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	r.verifications.WithLabelValues(label).Inc()
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/agbru/lasercalc/internal/errors"
)

const namespace = "lasercalc"

// Request outcomes recorded in lasercalc_requests_total.
const (
	OutcomeSuccess  = "success"
	OutcomeService  = "service_error"
	OutcomeDecode   = "decode_error"
	OutcomeNetwork  = "network_error"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomeOther    = "error"
)

// Metrics groups the collectors for one client session.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	active       prometheus.Gauge
	stale        prometheus.Counter
	httpRequests *prometheus.CounterVec
	handler      http.Handler
}

// NewMetrics creates and registers every collector, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Estimation requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of estimation requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "Estimation requests currently in flight.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by the local status endpoint.",
		}, []string{"path", "code"}),
	}
	reg.MustRegister(
		m.requests, m.duration, m.active, m.stale, m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the exposition handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// WritePrometheus serves the current metrics in the text exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.Handler().ServeHTTP(w, r)
}

// IncrementActiveRequests marks the start of an estimation request.
func (m *Metrics) IncrementActiveRequests() {
	if m == nil {
		return
	}
	m.active.Inc()
}

// DecrementActiveRequests marks the end of an estimation request.
func (m *Metrics) DecrementActiveRequests() {
	if m == nil {
		return
	}
	m.active.Dec()
}

// ObserveRequest records the outcome and latency of a finished request.
func (m *Metrics) ObserveRequest(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(Outcome(err)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// RecordStale counts a response that arrived after being superseded.
func (m *Metrics) RecordStale() {
	if m == nil {
		return
	}
	m.stale.Inc()
}

// RecordHTTP counts a request served by the local status endpoint.
func (m *Metrics) RecordHTTP(path, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, code).Inc()
}

// Outcome classifies err into one of the Outcome* labels.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var (
		svcErr *apperrors.ServiceError
		decErr *apperrors.DecodeError
		netErr *apperrors.NetworkError
	)
	switch {
	case errors.As(err, &svcErr):
		return OutcomeService
	case errors.As(err, &decErr):
		return OutcomeDecode
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.As(err, &netErr):
		if netErr.Timeout {
			return OutcomeTimeout
		}
		return OutcomeNetwork
	}
	return OutcomeOther
}

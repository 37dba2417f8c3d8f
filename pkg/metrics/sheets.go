package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// SheetsMetrics records request outcomes, retries and latency against the spreadsheet API.
type SheetsMetrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSheetsMetrics registers the spreadsheet metrics on the provided registerer.
func NewSheetsMetrics(reg prometheus.Registerer) *SheetsMetrics {
	if reg == nil {
		return &SheetsMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_requests_total",
		Help: "Spreadsheet API requests by operation and final outcome.",
	}, []string{"op", "outcome"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheets_retries_total",
		Help: "Spreadsheet API retries by operation and reason.",
	}, []string{"op", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sheets_request_duration_seconds",
		Help:    "Duration of spreadsheet API requests including retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(requests, retries, duration)
	return &SheetsMetrics{
		requests: requests,
		retries:  retries,
		duration: duration,
	}
}

// ObserveRequest records the final outcome and total duration of one request.
func (m *SheetsMetrics) ObserveRequest(op, outcome string, duration time.Duration) {
	if m == nil || m.requests == nil || m.duration == nil {
		return
	}
	op = normalizeLabel(op)
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
}

// IncRetry counts one backoff-and-retry cycle.
func (m *SheetsMetrics) IncRetry(op, reason string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(op), normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_mutations_total",
			Help: "Book mutations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	ActivitiesAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_appended_total",
			Help: "Activity records appended to the audit trail.",
		},
		[]string{"action"},
	)

	AuthenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authentication_attempts_total",
			Help: "Bearer token verifications by result.",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// MustRegister adds the collectors to the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			BookMutationsTotal,
			ActivitiesAppendedTotal,
			AuthenticationAttemptsTotal,
		)
	})
}

// Package metrics provides Prometheus metrics for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks handled API requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "configvault",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of handled API requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "configvault",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of handled API requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// MigrationsApplied tracks schema migrations applied since boot
	MigrationsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "configvault",
			Subsystem: "database",
			Name:      "migrations_applied_total",
			Help:      "Total number of schema migrations applied since startup",
		},
	)

	// AuthAttemptsTotal tracks login and register outcomes
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "configvault",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of authentication attempts by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

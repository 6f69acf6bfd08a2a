package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "critiq_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// TokenReissues counts transparent access token reissues by result.
	TokenReissues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "critiq_token_reissues_total",
			Help: "Total number of access token reissues via refresh tokens",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks sessions that are still valid.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "critiq_active_sessions",
			Help: "Number of valid sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "critiq_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

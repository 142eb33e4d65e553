package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefy_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cachefy_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ServicesRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefy_services_registered_total",
			Help: "Total service registrations through the callback surface",
		},
		[]string{"result"}, // "created" or "updated"
	)

	ProxyCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefy_proxy_calls_total",
			Help: "Total outbound cache calls proxied to agents",
		},
		[]string{"operation", "outcome"}, // outcome: "forwarded", "rejected", "failed"
	)

	AgentPings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefy_agent_pings_total",
			Help: "Total agent health probes",
		},
		[]string{"class"}, // "ok", "agent_error", "unreachable", "timeout"
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefy_auth_failures_total",
			Help: "Total rejected authentications",
		},
		[]string{"gate"}, // "apikey" or "bearer"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachefy_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for APIRequests
const (
	OutcomeOK             = "ok"
	OutcomeSessionExpired = "session_expired"
	OutcomeFailed         = "failed"
	OutcomeNetworkError   = "network_error"
)

var (
	// APIRequests counts backend calls made by the API client
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "api_requests_total",
		Help:      "Backend API requests by method and outcome.",
	}, []string{"method", "outcome"})

	// GuardDecisions counts route guard evaluations by resulting state
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions by state.",
	}, []string{"state"})

	// HTTPRequests counts requests served by the portal server
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "http_requests_total",
		Help:      "Portal HTTP requests by method and status.",
	}, []string{"method", "status"})
)

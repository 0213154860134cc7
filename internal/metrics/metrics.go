// Package metrics defines the Prometheus collectors exposed on /metrics.
//
// HTTP metrics:
//   - api_requests_total{method,endpoint,status_code}
//   - api_request_duration_seconds{method,endpoint}
//   - api_rate_limit_hits_total{endpoint}
//
// Domain metrics:
//   - membership_changes_total{kind,action,outcome}
//   - follow_changes_total{action,outcome}
//   - short_code_collisions_total
//   - short_link_cache_total{result}
//   - shopping_list_downloads_total{outcome}
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_changes_total",
			Help: "Favorite and shopping cart add/remove attempts",
		},
		[]string{"kind", "action", "outcome"},
	)

	FollowChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_changes_total",
			Help: "Follow and unfollow attempts",
		},
		[]string{"action", "outcome"},
	)

	ShortCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "short_code_collisions_total",
			Help: "Generated short code candidates that were already taken",
		},
	)

	ShortLinkCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "short_link_cache_total",
			Help: "Short link cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	ShoppingListDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_list_downloads_total",
			Help: "Shopping list aggregation requests by outcome",
		},
		[]string{"outcome"}, // ok, empty, error
	)
)

// Outcome maps an operation error to a low-cardinality label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "rejected"
}

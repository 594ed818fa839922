package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database/Repository Metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "curator_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)
)

// HTTP Metrics
var (
	// HTTPRequests tracks total HTTP requests by route and status class
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks HTTP request latency
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "curator_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)
)

// Upstream provider metrics
var (
	// UpstreamRequests tracks outbound calls to content providers
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_upstream_requests_total",
			Help: "Total outbound provider requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	// TokenRefreshes tracks client-credential token refreshes
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_token_refreshes_total",
			Help: "Total OAuth client-credential refreshes by provider and status",
		},
		[]string{"provider", "status"},
	)

	// SearchCacheHits tracks search-cache lookups
	SearchCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_search_cache_total",
			Help: "Search cache lookups by provider and outcome (hit, miss, error)",
		},
		[]string{"provider", "outcome"},
	)
)

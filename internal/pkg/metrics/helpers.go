package metrics

import (
	"strconv"
	"time"
)

// RecordDBOperation records database operation metrics consistently.
// repo: repository name (e.g., "user", "favorite")
// operation: operation name (e.g., "create", "get", "delete", "list")
func RecordDBOperation(repo, operation string, duration time.Duration, err error) {
	DBDuration.WithLabelValues(repo, operation).Observe(float64(duration.Milliseconds()))

	status := "success"
	if err != nil {
		status = "error"
	}
	DBOperations.WithLabelValues(repo, operation, status).Inc()
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(float64(duration.Milliseconds()))
}

// RecordUpstreamRequest records one outbound provider call
func RecordUpstreamRequest(provider string, statusCode int) {
	UpstreamRequests.WithLabelValues(provider, strconv.Itoa(statusCode)).Inc()
}

// RecordTokenRefresh records one client-credential refresh attempt
func RecordTokenRefresh(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TokenRefreshes.WithLabelValues(provider, status).Inc()
}

// RecordSearchCache records a search-cache lookup outcome
func RecordSearchCache(provider, outcome string) {
	SearchCacheHits.WithLabelValues(provider, outcome).Inc()
}

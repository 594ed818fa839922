package repositories

import (
	"context"
)

// HealthChecker is implemented by storage backends that can report liveness
type HealthChecker interface {
	// HealthCheck performs a health check on the backing store
	HealthCheck(ctx context.Context) error
}

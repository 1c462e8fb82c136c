package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed channel backend: object storage, a
// database, a broker client.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start connects the backend.
	Start(ctx context.Context) error

	// Stop releases the backend's resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description summarizes a component for the task startup log.
type Description struct {
	// Name is the human-readable display name. If empty, Name() is used.
	Name string
	// Type categorizes the backend: "storage", "database", "kafka", "redis".
	Type string
	// Details is a one-liner such as "localhost:6379 db=0".
	Details string
}

// Describable is optionally implemented by components to self-report how
// they are configured.
type Describable interface {
	Describe() Description
}

package lifecycle

import "context"

// Component is the lifecycle contract for long-running parts of the
// service (tracing provider, API server). The manager starts components
// in registration order and stops them in reverse.
type Component interface {
	// Start initializes and starts the component. Returns an error if
	// initialization fails.
	Start(ctx context.Context) error

	// Stop gracefully stops the component, completing in-flight work
	// within the context deadline.
	Stop(ctx context.Context) error

	// Name returns the human-readable component name for logging.
	Name() string
}

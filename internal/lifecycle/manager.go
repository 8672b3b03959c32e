package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prevenia/vigia/internal/logging"
)

// Manager orchestrates startup and shutdown of the service's components.
// Components start in registration order and stop in reverse order, each
// with its own shutdown grace period. A failed start rolls the already
// started components back.
type Manager struct {
	mu              sync.Mutex
	components      []Component
	started         []Component
	shutdownTimeout time.Duration
	logger          *logging.Logger
}

// NewManager creates a lifecycle manager with a 30-second shutdown grace
// period per component.
func NewManager() *Manager {
	return &Manager{
		shutdownTimeout: 30 * time.Second,
		logger:          logging.GetLogger("lifecycle"),
	}
}

// Register appends a component. Registration order is startup order.
func (m *Manager) Register(component Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if component == nil {
		return errors.New("cannot register nil component")
	}
	if component.Name() == "" {
		return errors.New("component must have a non-empty name")
	}
	for _, c := range m.components {
		if c == component {
			return fmt.Errorf("component %s is already registered", component.Name())
		}
	}

	m.components = append(m.components, component)
	return nil
}

// Start starts all registered components in order. On failure the already
// started components are stopped in reverse order and the error returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = nil
	for _, component := range m.components {
		m.logger.Info("Starting %s", component.Name())
		startTime := time.Now()

		if err := component.Start(ctx); err != nil {
			m.logger.Error("Failed to start %s: %v", component.Name(), err)
			m.rollbackLocked()
			return fmt.Errorf("initialization failed for %s: %w", component.Name(), err)
		}

		m.started = append(m.started, component)
		m.logger.Info("%s started (took %dms)", component.Name(), time.Since(startTime).Milliseconds())
	}

	m.logger.Info("All components started")
	return nil
}

// rollbackLocked stops the components started during a failed startup, in
// reverse order, with a short per-component timeout.
func (m *Manager) rollbackLocked() {
	for i := len(m.started) - 1; i >= 0; i-- {
		component := m.started[i]
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := component.Stop(ctx); err != nil {
			m.logger.Warn("Error stopping %s during rollback: %v", component.Name(), err)
		}
		cancel()
	}
	m.started = nil
}

// Stop stops the started components in reverse order. Each component gets
// its own grace period; errors are logged, not propagated, so one slow
// component never blocks the others from stopping.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping all components")
	for i := len(m.started) - 1; i >= 0; i-- {
		component := m.started[i]
		m.logger.Info("Stopping %s", component.Name())

		componentCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
		err := component.Stop(componentCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				m.logger.Warn("Component %s exceeded its %dms grace period",
					component.Name(), m.shutdownTimeout.Milliseconds())
			} else {
				m.logger.Error("Error stopping %s: %v", component.Name(), err)
			}
		}
	}
	m.started = nil

	m.logger.Info("All components stopped")
	return nil
}

// SetShutdownTimeout sets the per-component grace period for Stop.
func (m *Manager) SetShutdownTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownTimeout = timeout
}

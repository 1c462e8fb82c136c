package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

// Registry starts channel backends in registration order and stops them in
// reverse. Backends started before a failed Start stay up until StopAll.
type Registry struct {
	mu         sync.RWMutex
	components []Component
	byName     map[string]int
	started    int // components[:started] are running
	log        *logger.Logger
}

// NewRegistry returns an empty registry logging through log.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		byName: make(map[string]int),
		log:    log.WithComponent("components"),
	}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	r.byName[name] = len(r.components)
	r.components = append(r.components, c)
	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component not yet running.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ; r.started < len(r.components); r.started++ {
		c := r.components[r.started]
		if err := c.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields(
				logger.FieldComponent, c.Name(),
				logger.FieldError, err.Error(),
			))
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		desc := DescribeOf(c)
		r.log.Info("component started", logger.Fields(
			logger.FieldComponent, c.Name(),
			"type", desc.Type,
			"details", desc.Details,
		))
	}
	return nil
}

// StopAll stops the running components, last started first, and reports
// every Stop error.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for ; r.started > 0; r.started-- {
		c := r.components[r.started-1]
		if err := stopWithTimeout(ctx, c); err != nil {
			r.log.Error("component stop failed", logger.Fields(
				logger.FieldComponent, c.Name(),
				logger.FieldError, err.Error(),
			))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			continue
		}
		r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, c.Name()))
	}
	return errors.Join(errs...)
}

func stopWithTimeout(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
	defer cancel()
	return c.Stop(ctx)
}

// HealthAll reports every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.components))
	for i, c := range r.components {
		out[i] = c.Health(ctx)
	}
	return out
}

// Unhealthy returns the reports whose status is not StatusHealthy.
func (r *Registry) Unhealthy(ctx context.Context) []Health {
	var out []Health
	for _, h := range r.HealthAll(ctx) {
		if h.Status != StatusHealthy {
			out = append(out, h)
		}
	}
	return out
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i, ok := r.byName[name]; ok {
		return r.components[i]
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.components...)
}

// DescribeOf returns c's self-description, falling back to its name.
func DescribeOf(c Component) Description {
	var desc Description
	if d, ok := c.(Describable); ok {
		desc = d.Describe()
	}
	if desc.Name == "" {
		desc.Name = c.Name()
	}
	return desc
}

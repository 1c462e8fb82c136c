package component

import (
	"context"
	"fmt"
	"sync"
)

// Backend tells Managed how to open, close and probe one handle of type T.
type Backend[T any] struct {
	// Open connects the backend. Required.
	Open func(ctx context.Context) (T, error)
	// Close releases the handle. Nil means nothing to release.
	Close func(h T) error
	// Probe checks a live handle; a nil error is healthy. A ProbeError
	// chooses the status, any other error reports unhealthy.
	Probe func(ctx context.Context, h T) error
	// Describe summarizes the configuration for the startup log.
	Describe func() Description
}

// ProbeError reports a probe failure with an explicit status, typically
// StatusDegraded.
type ProbeError struct {
	Status HealthStatus
	Err    error
}

func (e *ProbeError) Error() string { return e.Err.Error() }
func (e *ProbeError) Unwrap() error { return e.Err }

// Managed is a Component holding the handle opened by Start until Stop.
// Start and Stop are idempotent.
type Managed[T any] struct {
	name    string
	backend Backend[T]

	mu     sync.RWMutex
	handle T
	open   bool
}

// NewManaged returns a stopped component named name.
func NewManaged[T any](name string, b Backend[T]) *Managed[T] {
	return &Managed[T]{name: name, backend: b}
}

func (m *Managed[T]) Name() string { return m.name }

// Handle returns the open handle, and false before Start or after Stop.
func (m *Managed[T]) Handle() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handle, m.open
}

func (m *Managed[T]) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return nil
	}
	h, err := m.backend.Open(ctx)
	if err != nil {
		return err
	}
	m.handle, m.open = h, true
	return nil
}

func (m *Managed[T]) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil
	}
	h := m.handle
	var zero T
	m.handle, m.open = zero, false
	if m.backend.Close == nil {
		return nil
	}
	return m.backend.Close(h)
}

func (m *Managed[T]) Health(ctx context.Context) Health {
	h, ok := m.Handle()
	if !ok {
		return Health{Name: m.name, Status: StatusUnhealthy, Message: "not started"}
	}
	if m.backend.Probe == nil {
		return Health{Name: m.name, Status: StatusHealthy}
	}
	err := m.backend.Probe(ctx, h)
	if err == nil {
		return Health{Name: m.name, Status: StatusHealthy}
	}
	status := StatusUnhealthy
	if pe, ok := err.(*ProbeError); ok && pe.Status != "" {
		status = pe.Status
	}
	return Health{Name: m.name, Status: status, Message: err.Error()}
}

func (m *Managed[T]) Describe() Description {
	if m.backend.Describe == nil {
		return Description{Name: m.name}
	}
	return m.backend.Describe()
}

// Degraded wraps err as a probe failure with StatusDegraded.
func Degraded(format string, args ...any) error {
	return &ProbeError{Status: StatusDegraded, Err: fmt.Errorf(format, args...)}
}

var (
	_ Component   = (*Managed[int])(nil)
	_ Describable = (*Managed[int])(nil)
)

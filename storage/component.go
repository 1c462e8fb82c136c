package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/logger"
)

// Locator is implemented by provider configs that can name where objects
// land, e.g. a directory or an s3:// URL.
type Locator interface {
	Location() string
}

// healthObject is probed with Exists; it need not exist.
const healthObject = ".health"

// Component owns the Storage of a file channel.
type Component struct {
	*component.Managed[Storage]
}

// NewComponent creates a storage component named name for the provider
// selected by cfg. providerCfg is the provider's own config section.
func NewComponent(name string, cfg Config, providerCfg any, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()

	return &Component{component.NewManaged(name, component.Backend[Storage]{
		Open: func(context.Context) (Storage, error) {
			s, err := New(cfg, providerCfg, log)
			if err != nil {
				return nil, fmt.Errorf("storage start: %w", err)
			}
			return s, nil
		},
		Probe: func(ctx context.Context, s Storage) error {
			if _, err := s.Exists(ctx, healthObject); err != nil {
				return fmt.Errorf("health probe failed: %w", err)
			}
			return nil
		},
		Describe: func() component.Description {
			details := cfg.Provider
			if l, ok := providerCfg.(Locator); ok {
				details += " " + l.Location()
			}
			return component.Description{Name: name, Type: "storage", Details: details}
		},
	})}
}

// Storage returns the started store, or nil outside Start/Stop.
func (c *Component) Storage() Storage {
	s, _ := c.Handle()
	return s
}

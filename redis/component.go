package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/logger"
)

// Component owns the Client of a redis channel for the lifetime of a task.
type Component struct {
	*component.Managed[*Client]
}

// NewComponent creates a Redis component named name. Start connects and
// pings; Health pings again.
func NewComponent(name string, cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()
	log = log.WithComponent("redis")

	return &Component{component.NewManaged(name, component.Backend[*Client]{
		Open: func(ctx context.Context) (*Client, error) {
			client, err := New(cfg, log)
			if err != nil {
				return nil, fmt.Errorf("redis start: %w", err)
			}
			if err := client.Ping(ctx); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("redis start ping: %w", err)
			}
			return client, nil
		},
		Close: (*Client).Close,
		Probe: func(ctx context.Context, c *Client) error {
			if err := c.Ping(ctx); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			return nil
		},
		Describe: func() component.Description {
			return component.Description{
				Name:    "Redis",
				Type:    "redis",
				Details: fmt.Sprintf("%s db=%d prefix=%s", cfg.Addr, cfg.DB, cfg.KeyPrefix),
			}
		},
	})}
}

// Client returns the connected client, or nil outside Start/Stop.
func (c *Component) Client() *Client {
	client, _ := c.Handle()
	return client
}

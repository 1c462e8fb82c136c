package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/dataflow/component"
	"github.com/kbukum/dataflow/logger"
)

// Component owns a Producer for the lifetime of a task.
type Component struct {
	*component.Managed[*Producer]
}

// NewComponent creates a Kafka component named name. Health dials the first
// broker and reads the topic's partitions; a reachable broker without
// metadata for the topic is degraded.
func NewComponent(name string, cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.Nop()
	}
	cfg.ApplyDefaults()

	return &Component{component.NewManaged(name, component.Backend[*Producer]{
		Open: func(context.Context) (*Producer, error) {
			return NewProducer(cfg, log)
		},
		Close: func(p *Producer) error {
			log.Info("Kafka producer stats", p.Stats().Fields())
			return p.Close()
		},
		Probe: func(ctx context.Context, _ *Producer) error {
			return probeTopic(ctx, cfg)
		},
		Describe: func() component.Description {
			return component.Description{
				Name:    "Kafka",
				Type:    "kafka",
				Details: fmt.Sprintf("brokers=%s topic=%s", strings.Join(cfg.Brokers, ","), cfg.Topic),
			}
		},
	})}
}

// Producer returns the started producer, or nil outside Start/Stop.
func (c *Component) Producer() *Producer {
	p, _ := c.Handle()
	return p
}

func probeTopic(ctx context.Context, cfg Config) error {
	dialer, err := CreateDialer(&cfg)
	if err != nil {
		return fmt.Errorf("dialer: %w", err)
	}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("broker unreachable: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(cfg.Topic); err != nil {
		return component.Degraded("topic metadata: %v", err)
	}
	return nil
}

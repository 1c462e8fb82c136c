package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/validation"
)

// Config enables OTLP/HTTP export of task traces and metrics. Export is off
// while Endpoint is empty.
type Config struct {
	// Endpoint is the collector host:port, e.g. "localhost:4318".
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
	// Interval is the metric export period.
	Interval string `yaml:"interval" mapstructure:"interval" validate:"duration"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// ApplyDefaults samples every task and exports metrics every 15s.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.Interval == "" {
		c.Interval = "15s"
	}
}

func (c *Config) Validate() error { return validation.Validate(c) }

func (c Config) interval() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// Service identifies the process on exported telemetry.
type Service struct {
	Name        string
	Version     string
	Environment string
}

// Telemetry owns the providers of one task process and the task instruments
// recorded into them.
type Telemetry struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	Metrics *TaskMetrics
}

// Start installs the tracer and meter providers as the otel globals and
// creates the task instruments. Shutdown flushes both.
func Start(ctx context.Context, cfg Config, svc Service, log *logger.Logger) (*Telemetry, error) {
	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	t := &Telemetry{}
	if t.tracer, err = newTracerProvider(ctx, cfg, res); err != nil {
		return nil, err
	}
	if t.meter, err = newMeterProvider(ctx, cfg, res); err != nil {
		_ = t.tracer.Shutdown(ctx)
		return nil, err
	}
	if t.Metrics, err = NewTaskMetrics(t.meter.Meter(InstrumentationName)); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}

	if log != nil {
		log.Info("telemetry started", logger.Fields(
			"endpoint", cfg.Endpoint,
			"sample_rate", cfg.SampleRate,
			"interval", cfg.Interval,
		))
	}
	return t, nil
}

// Shutdown flushes pending metrics and spans. A nil Telemetry is a no-op.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

// TaskMetrics returns the instruments, nil when t is nil.
func (t *Telemetry) TaskMetrics() *TaskMetrics {
	if t == nil {
		return nil
	}
	return t.Metrics
}

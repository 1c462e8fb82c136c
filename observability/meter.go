package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if d := cfg.interval(); d > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(d))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter { return otel.Meter(name) }

// TaskMetrics holds the instruments recorded by the executor.
type TaskMetrics struct {
	recordsRouted metric.Int64Counter
	emptyPulls    metric.Int64Counter
	taskTotal     metric.Int64Counter
	taskDuration  metric.Float64Histogram
	commitTotal   metric.Int64Counter
	errorTotal    metric.Int64Counter
}

// NewTaskMetrics creates task instruments on the given meter.
func NewTaskMetrics(meter metric.Meter) (*TaskMetrics, error) {
	recordsRouted, err := meter.Int64Counter("task.records.routed",
		metric.WithDescription("Records written to destination channels"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.records.routed counter: %w", err)
	}

	emptyPulls, err := meter.Int64Counter("task.pulls.empty",
		metric.WithDescription("Pulls that returned no record"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.pulls.empty counter: %w", err)
	}

	taskTotal, err := meter.Int64Counter("task.total",
		metric.WithDescription("Tasks finished by terminal state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.total counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram("task.duration",
		metric.WithDescription("Duration of task runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.duration histogram: %w", err)
	}

	commitTotal, err := meter.Int64Counter("task.commits",
		metric.WithDescription("Direct channel commits by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.commits counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("task.errors",
		metric.WithDescription("Task failures by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task.errors counter: %w", err)
	}

	return &TaskMetrics{
		recordsRouted: recordsRouted,
		emptyPulls:    emptyPulls,
		taskTotal:     taskTotal,
		taskDuration:  taskDuration,
		commitTotal:   commitTotal,
		errorTotal:    errorTotal,
	}, nil
}

// RecordRouted counts one routed record.
func (m *TaskMetrics) RecordRouted(ctx context.Context, topology string) {
	if m == nil {
		return
	}
	m.recordsRouted.Add(ctx, 1, metric.WithAttributes(attribute.String("topology", topology)))
}

// RecordEmptyPulls counts pulls that produced no record.
func (m *TaskMetrics) RecordEmptyPulls(ctx context.Context, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.emptyPulls.Add(ctx, n)
}

// RecordCommit counts one direct channel commit.
func (m *TaskMetrics) RecordCommit(ctx context.Context, channel string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commitTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
}

// RecordTask records a finished task.
func (m *TaskMetrics) RecordTask(ctx context.Context, topology, state string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topology", topology),
		attribute.String("state", state),
	))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("topology", topology),
	))
}

// RecordError counts a task failure by error code.
func (m *TaskMetrics) RecordError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// Package observability exports task traces and metrics over OTLP/HTTP.
//
// Start installs the tracer and meter providers as the otel globals and
// creates the TaskMetrics instruments the executor records into. A nil
// *TaskMetrics records nothing, so tasks run without telemetry by default.
//
//	tel, err := observability.Start(ctx, cfg, observability.Service{Name: "fruit"}, log)
//	defer tel.Shutdown(ctx)
//	task, err := executor.New(taskCfg, handle, channels, executor.WithMetrics(tel.TaskMetrics()))
package observability

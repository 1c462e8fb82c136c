package executor

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/logger"
	"github.com/kbukum/dataflow/observability"
	"github.com/kbukum/dataflow/pipeline"
	"github.com/kbukum/dataflow/record"
)

// State is a task lifecycle state.
type State int32

const (
	StateInitializing State = iota
	StateClassified
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateClassified:
		return "classified"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether s is completed or failed.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

// Result is the outcome of one task run.
type Result struct {
	TaskID     string
	AttemptID  string
	State      State
	Topology   string
	Records    int64
	EmptyPulls int64
	Duration   time.Duration
	// Err is set when State is StateFailed. It is always an *errors.AppError.
	Err error
}

// Report is the serializable form of a Result.
type Report struct {
	TaskID     string         `json:"task_id"`
	AttemptID  string         `json:"attempt_id"`
	State      string         `json:"state"`
	Topology   string         `json:"topology,omitempty"`
	Records    int64          `json:"records"`
	EmptyPulls int64          `json:"empty_pulls"`
	DurationMS int64          `json:"duration_ms"`
	Error      *errors.Report `json:"error,omitempty"`
}

// Report renders r for the runtime that invoked the task.
func (r Result) Report() Report {
	rep := Report{
		TaskID:     r.TaskID,
		AttemptID:  r.AttemptID,
		State:      r.State.String(),
		Topology:   r.Topology,
		Records:    r.Records,
		EmptyPulls: r.EmptyPulls,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		appErr, ok := errors.AsAppError(r.Err)
		if !ok {
			appErr = errors.Internal(r.Err)
		}
		er := appErr.ToReport()
		rep.Error = &er
	}
	return rep
}

// Option configures a Task.
type Option func(*Task)

// WithLogger sets the task logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Task) {
		if l != nil {
			t.log = l
		}
	}
}

// WithMetrics sets the task metrics. A nil value disables metrics.
func WithMetrics(m *observability.TaskMetrics) Option {
	return func(t *Task) { t.metrics = m }
}

// WithAttemptID overrides the generated attempt ID.
func WithAttemptID(id string) Option {
	return func(t *Task) {
		if id != "" {
			t.attemptID = id
		}
	}
}

// Task executes one pipeline against its destination channels. A Task runs
// at most once.
type Task struct {
	cfg       Config
	handle    pipeline.Handle
	channels  []channel.Channel
	keyType   record.DataType
	attemptID string
	log       *logger.Logger
	metrics   *observability.TaskMetrics

	state   atomic.Int32
	started atomic.Bool
}

// New creates a task for handle writing to channels. The channel set is fixed
// for the lifetime of the task.
func New(cfg Config, handle pipeline.Handle, channels []channel.Channel, opts ...Option) (*Task, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, errors.InvalidConfig("pipeline", "pipeline handle is required")
	}
	keyType, err := cfg.keyType()
	if err != nil {
		return nil, err
	}

	t := &Task{
		cfg:       cfg,
		handle:    handle,
		channels:  append([]channel.Channel(nil), channels...),
		keyType:   keyType,
		attemptID: uuid.NewString(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if kt, ok := handle.(pipeline.KeyTyper); ok && kt.KeyType() != record.TypeUnknown {
		t.keyType = kt.KeyType()
	}
	t.log = t.log.WithComponent("executor").WithFields(logger.Fields(
		logger.FieldTaskID, cfg.TaskID,
		logger.FieldAttemptID, t.attemptID,
	))
	return t, nil
}

// State returns the current lifecycle state.
func (t *Task) State() State { return State(t.state.Load()) }

// AttemptID returns the identifier of this execution attempt.
func (t *Task) AttemptID() string { return t.attemptID }

// Run classifies the output, drives the pipeline to exhaustion and commits
// direct channels. Failures are reported in the result, never retried.
func (t *Task) Run(ctx context.Context) Result {
	start := time.Now()
	res := Result{TaskID: t.cfg.TaskID, AttemptID: t.attemptID}

	if !t.started.CompareAndSwap(false, true) {
		// the task keeps its terminal state; only this call fails
		res.State = StateFailed
		res.Err = errors.Internal(fmt.Errorf("task %s already ran", t.cfg.TaskID))
		return res
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanTaskRun, trace.WithAttributes(
		attribute.String(observability.AttrTaskID, t.cfg.TaskID),
		attribute.String(observability.AttrAttemptID, t.attemptID),
	))
	defer span.End()

	err := t.run(ctx, &res)
	res.Duration = time.Since(start)
	t.finish(ctx, span, &res, err)
	return res
}

func (t *Task) run(ctx context.Context, res *Result) error {
	topology, err := Classify(t.channels, t.cfg.Output, t.keyType)
	if err != nil {
		return err
	}
	res.Topology = Name(topology)
	t.transition(StateClassified)
	t.log.Info("output classified", logger.Fields(
		logger.FieldTopology, res.Topology,
		logger.FieldChannel, topology.Output().Name(),
		"key_type", t.keyType.String(),
	))

	router, err := NewRouter(topology)
	if err != nil {
		return err
	}

	t.transition(StateRunning)
	stats, err := Loop(ctx, t.handle, func(ctx context.Context, rec record.Tuple) error {
		if err := router.Route(ctx, rec); err != nil {
			return err
		}
		t.metrics.RecordRouted(ctx, res.Topology)
		return nil
	})
	res.Records = stats.Records
	res.EmptyPulls = stats.Empty
	t.metrics.RecordEmptyPulls(ctx, stats.Empty)
	if err != nil {
		return err
	}

	if direct, ok := topology.(Direct); ok {
		return CommitAll(ctx, direct.Channels, t.metrics)
	}
	return nil
}

func (t *Task) finish(ctx context.Context, span trace.Span, res *Result, err error) {
	if err != nil {
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Internal(err)
		}
		res.Err = appErr
		res.State = StateFailed
	} else {
		res.State = StateCompleted
	}
	t.transition(res.State)
	t.release()

	span.SetAttributes(
		attribute.String(observability.AttrTopology, res.Topology),
		attribute.String(observability.AttrState, res.State.String()),
		attribute.Int64(observability.AttrRecords, res.Records),
	)
	t.metrics.RecordTask(ctx, res.Topology, res.State.String(), res.Duration)

	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldTopology, res.Topology,
		logger.FieldRecords, res.Records,
		logger.FieldState, res.State.String(),
	), res.Duration)

	if res.Err != nil {
		appErr, _ := errors.AsAppError(res.Err)
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, appErr.Message)
		span.SetAttributes(attribute.String(observability.AttrErrorCode, string(appErr.Code)))
		t.metrics.RecordError(ctx, string(appErr.Code))
		fields[logger.FieldCode] = string(appErr.Code)
		t.log.WithError(res.Err).Error("task failed", fields)
		return
	}
	t.log.Info("task completed", fields)
}

// release closes channels and the pipeline once the task is terminal.
func (t *Task) release() {
	for _, c := range t.channels {
		closer, ok := c.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			t.log.Warn("channel close failed", logger.Fields(
				logger.FieldChannel, c.Name(),
				logger.FieldError, err.Error(),
			))
		}
	}
	if err := pipeline.Close(t.handle); err != nil {
		t.log.Warn("pipeline close failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func (t *Task) transition(s State) {
	prev := State(t.state.Swap(int32(s)))
	t.log.Debug("state transition", logger.Fields("from", prev.String(), "to", s.String()))
}

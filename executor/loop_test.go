package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/pipeline"
	"github.com/kbukum/dataflow/record"
)

// countingHandle counts pulls made against the wrapped handle.
type countingHandle struct {
	pipeline.Handle
	pulls int
}

func (h *countingHandle) Next(ctx context.Context) pipeline.Result {
	h.pulls++
	return h.Handle.Next(ctx)
}

func collect(routed *[]record.Tuple) RouteFunc {
	return func(_ context.Context, rec record.Tuple) error {
		*routed = append(*routed, rec)
		return nil
	}
}

func TestLoop_RoutesInOrderUntilEndOfStream(t *testing.T) {
	recs := []record.Tuple{record.NewTuple(1), record.NewTuple(2), record.NewTuple(3)}
	var routed []record.Tuple

	stats, err := Loop(context.Background(), pipeline.FromSlice(recs), collect(&routed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(recs, routed); diff != "" {
		t.Errorf("routed mismatch (-want +got):\n%s", diff)
	}
	if stats.Records != 3 || stats.Pulls != 4 {
		t.Errorf("stats = %+v, want 3 records over 4 pulls", stats)
	}
}

func TestLoop_EmptySkipped(t *testing.T) {
	h := pipeline.FromResults(
		pipeline.Empty{},
		pipeline.Empty{},
		pipeline.Emit{Record: record.NewTuple("x")},
		pipeline.Empty{},
	)
	var routed []record.Tuple

	stats, err := Loop(context.Background(), h, collect(&routed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routed) != 1 {
		t.Errorf("expected 1 routed record, got %d", len(routed))
	}
	if stats.Empty != 3 {
		t.Errorf("expected 3 empty pulls, got %d", stats.Empty)
	}
}

func TestLoop_FailureStopsPulling(t *testing.T) {
	h := &countingHandle{Handle: pipeline.FromResults(
		pipeline.Emit{Record: record.NewTuple(1)},
		pipeline.Failure{Payload: "disk full"},
		pipeline.Emit{Record: record.NewTuple(2)},
	)}
	var routed []record.Tuple

	_, err := Loop(context.Background(), h, collect(&routed))
	if !errors.HasCode(err, errors.ErrCodePipeline) {
		t.Fatalf("expected PIPELINE_ERROR, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Message != "received error while processing the pipeline: disk full" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if appErr.Number != errors.NumberPipeline {
		t.Errorf("expected number %d, got %d", errors.NumberPipeline, appErr.Number)
	}
	if h.pulls != 2 {
		t.Errorf("expected 2 pulls, got %d", h.pulls)
	}
	if len(routed) != 1 {
		t.Errorf("expected 1 routed record, got %d", len(routed))
	}
}

func TestLoop_FailureWithoutPayload(t *testing.T) {
	_, err := Loop(context.Background(), pipeline.FromResults(pipeline.Failure{}), collect(new([]record.Tuple)))
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Message != "received error while processing the pipeline" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestLoop_RouteErrorStops(t *testing.T) {
	h := &countingHandle{Handle: pipeline.FromSlice([]record.Tuple{record.NewTuple(1), record.NewTuple(2)})}
	routeErr := errors.WriteFailed("out", fmt.Errorf("broken pipe"))

	_, err := Loop(context.Background(), h, func(context.Context, record.Tuple) error { return routeErr })
	if err != routeErr {
		t.Fatalf("expected route error to propagate, got %v", err)
	}
	if h.pulls != 1 {
		t.Errorf("expected 1 pull, got %d", h.pulls)
	}
}

func TestLoop_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := &countingHandle{Handle: pipeline.FromSlice([]record.Tuple{record.NewTuple(1)})}

	_, err := Loop(ctx, h, collect(new([]record.Tuple)))
	if !errors.HasCode(err, errors.ErrCodeCanceled) {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if h.pulls != 0 {
		t.Errorf("expected no pulls after cancellation, got %d", h.pulls)
	}
}

type nilHandle struct{}

func (nilHandle) Next(context.Context) pipeline.Result { return nil }

func TestLoop_UnexpectedResult(t *testing.T) {
	_, err := Loop(context.Background(), nilHandle{}, collect(new([]record.Tuple)))
	if !errors.HasCode(err, errors.ErrCodeInternal) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}

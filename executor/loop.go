package executor

import (
	"context"
	"fmt"

	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/pipeline"
	"github.com/kbukum/dataflow/record"
)

// RouteFunc handles one emitted record.
type RouteFunc func(ctx context.Context, rec record.Tuple) error

// LoopStats counts what a loop run observed.
type LoopStats struct {
	Pulls   int64
	Records int64
	Empty   int64
}

// Loop pulls h until EndOfStream, passing every emitted record to route in
// emission order. Empty pulls are skipped. The first Failure, routing error
// or context cancellation stops the loop without further pulls.
func Loop(ctx context.Context, h pipeline.Handle, route RouteFunc) (LoopStats, error) {
	var stats LoopStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, errors.Canceled(err)
		}

		res := h.Next(ctx)
		stats.Pulls++

		switch r := res.(type) {
		case pipeline.Emit:
			if err := route(ctx, r.Record); err != nil {
				return stats, err
			}
			stats.Records++
		case pipeline.Empty:
			stats.Empty++
		case pipeline.EndOfStream:
			return stats, nil
		case pipeline.Failure:
			return stats, errors.PipelineFailure(r.Payload)
		default:
			return stats, errors.Internal(fmt.Errorf("pipeline returned unexpected result %T", res))
		}
	}
}

package executor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/observability"
)

// CommitAll commits every direct channel once, in order. It stops at the
// first failure; channels after it are left uncommitted.
func CommitAll(ctx context.Context, channels []channel.DirectChannel, metrics *observability.TaskMetrics) error {
	for _, c := range channels {
		if err := commitOne(ctx, c, metrics); err != nil {
			return err
		}
	}
	return nil
}

func commitOne(ctx context.Context, c channel.DirectChannel, metrics *observability.TaskMetrics) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanTaskCommit)
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrChannel, c.Name()))

	err := c.Commit(ctx)
	metrics.RecordCommit(ctx, c.Name(), err)
	if err != nil {
		span.RecordError(err)
		return errors.CommitFailed(c.Name(), err)
	}
	return nil
}

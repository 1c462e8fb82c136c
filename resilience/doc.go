// Package resilience retries operations against channel backends with
// exponential backoff.
//
//	err := resilience.RetryFunc(ctx, cfg, func(ctx context.Context, attempt int) error {
//	    return writer.WriteMessages(ctx, msgs...)
//	})
package resilience

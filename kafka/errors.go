package kafka

import (
	"errors"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/dataflow/resilience"
)

// IsConnectionError reports whether err is a broker transport failure.
// kafka-go broker error codes satisfy net.Error but arrive over a working
// connection, so they never count.
func IsConnectionError(err error) bool {
	var code kafkago.Error
	if errors.As(err, &code) {
		return false
	}
	return resilience.IsTransportError(err)
}

// IsRetryableError reports whether a failed write may succeed when retried.
// Broker error codes follow kafka-go's Temporary classification; a batch is
// retried only when every failed message is retryable.
func IsRetryableError(err error) bool {
	if err == nil || resilience.IsCanceled(err) {
		return false
	}
	var batch kafkago.WriteErrors
	if errors.As(err, &batch) {
		if batch.Count() == 0 {
			return false
		}
		for _, e := range batch {
			if e != nil && !IsRetryableError(e) {
				return false
			}
		}
		return true
	}
	var code kafkago.Error
	if errors.As(err, &code) {
		return code.Temporary()
	}
	return IsConnectionError(err)
}

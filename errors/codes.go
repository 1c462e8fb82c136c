package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Task execution errors
const (
	// ErrCodePipeline indicates the pipeline reported an unrecoverable error.
	ErrCodePipeline ErrorCode = "PIPELINE_ERROR"
	// ErrCodeTopologyMismatch indicates the channel set or a record shape does
	// not match the classified output topology.
	ErrCodeTopologyMismatch ErrorCode = "TOPOLOGY_MISMATCH"
	// ErrCodeCanceled indicates the task context was canceled between pulls.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Channel errors
const (
	// ErrCodeWriteFailed indicates a destination channel write failed.
	ErrCodeWriteFailed ErrorCode = "WRITE_FAILED"
	// ErrCodeCommitFailed indicates a direct channel commit failed.
	ErrCodeCommitFailed ErrorCode = "COMMIT_FAILED"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates the task configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Category tells the orchestrating runtime where a failure originated.
type Category string

const (
	// CategoryBug is a defect in the pipeline or the executor.
	CategoryBug Category = "BUG"
	// CategoryUser is a problem with the submitted task or its configuration.
	CategoryUser Category = "USER"
	// CategoryRemote is a failure in an external system such as a channel backend.
	CategoryRemote Category = "REMOTE"
)

// Stable numeric codes reported alongside ErrorCode.
const (
	NumberPipeline         = 2055
	NumberTopologyMismatch = 2056
	NumberWriteFailed      = 2057
	NumberCommitFailed     = 2058
)

// Write and commit failures are transient at task-restart granularity; the
// executor never retries them itself.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeWriteFailed:  true,
	ErrCodeCommitFailed: true,
	ErrCodeCanceled:     true,
	ErrCodePipeline:     false,
	ErrCodeInternal:     false,
}

// IsRetryableCode returns true if a task that failed with code may be restarted.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

package errors

import (
	"fmt"
	"maps"
)

// AppError is the unified task error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Category classifies where the failure originated.
	Category Category `json:"category"`
	// Number is a stable numeric code, zero when none applies.
	Number int `json:"number,omitempty"`
	// Retryable indicates if the task may be restarted by the runtime.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail is WithDetails for one pair.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, category Category, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Category:  category,
		Retryable: IsRetryableCode(code),
	}
}

// --- Task error constructors ---

// PipelineFailure creates the error reported when the pipeline returns an
// error status. payload is the pipeline's diagnostic and may be nil.
func PipelineFailure(payload any) *AppError {
	msg := "received error while processing the pipeline"
	if payload != nil {
		msg = fmt.Sprintf("%s: %v", msg, payload)
	}
	e := &AppError{
		Code: ErrCodePipeline, Message: msg, Category: CategoryBug,
		Number: NumberPipeline, Retryable: false,
	}
	if cause, ok := payload.(error); ok {
		e.Cause = cause
	}
	return e
}

// TopologyMismatch creates a configuration error for an incoherent channel
// set or a record whose shape does not fit the active topology.
func TopologyMismatch(reason string) *AppError {
	return &AppError{
		Code: ErrCodeTopologyMismatch, Message: reason, Category: CategoryUser,
		Number: NumberTopologyMismatch, Retryable: false,
	}
}

// WriteFailed wraps a channel write failure.
func WriteFailed(channel string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWriteFailed, Message: fmt.Sprintf("write to channel %q failed", channel),
		Category: CategoryRemote, Number: NumberWriteFailed, Retryable: true,
		Details: map[string]any{"channel": channel}, Cause: cause,
	}
}

// CommitFailed wraps a direct channel commit failure.
func CommitFailed(channel string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCommitFailed, Message: fmt.Sprintf("commit of channel %q failed", channel),
		Category: CategoryRemote, Number: NumberCommitFailed, Retryable: true,
		Details: map[string]any{"channel": channel}, Cause: cause,
	}
}

// Canceled creates the error reported when the task context ends mid-run.
func Canceled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: "task canceled",
		Category: CategoryRemote, Retryable: true, Cause: cause,
	}
}

// InvalidConfig creates a new AppError for an invalid task configuration.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid configuration: %s", reason),
		Category: CategoryUser, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for struct validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		Category: CategoryUser, Retryable: false,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Category: CategoryBug, Retryable: false, Cause: cause,
	}
}

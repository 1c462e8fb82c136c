package errors

import (
	stderrors "errors"
)

// Report is the diagnostic a failed task hands back to the runtime that
// invoked it.
type Report struct {
	Code      ErrorCode      `json:"code"`
	Category  Category       `json:"category"`
	Number    int            `json:"number,omitempty"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Cause     string         `json:"cause,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToReport converts an AppError to a Report for serialization.
func (e *AppError) ToReport() Report {
	r := Report{
		Code:      e.Code,
		Category:  e.Category,
		Number:    e.Number,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
	if e.Cause != nil {
		r.Cause = e.Cause.Error()
	}
	return r
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Is, As and Join re-export the standard helpers so callers need one import.
var (
	Is   = stderrors.Is
	As   = stderrors.As
	Join = stderrors.Join
)

package domain

import "fmt"

// ValidationError rejects malformed input: empty legend, too few polygon
// vertices, empty log text, missing schedule fields.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError rejects mutations that would violate a cross-record rule:
// area double-booking, legend collision, deleting a referenced area.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// TimeWindowError rejects a patrol start attempted outside the allowed window.
type TimeWindowError struct {
	Message string
}

func (e *TimeWindowError) Error() string { return e.Message }

func NewTimeWindowError(format string, args ...any) *TimeWindowError {
	return &TimeWindowError{Message: fmt.Sprintf(format, args...)}
}

// ConfirmationRequiredError is a control signal, not a failure: ending a
// patrol before the scheduled end needs an explicit acknowledgment, after
// which the caller re-invokes with confirmed set.
type ConfirmationRequiredError struct{}

func (e *ConfirmationRequiredError) Error() string {
	return "ending before the scheduled end time requires confirmation"
}

// UploadError wraps a failed log-buffer flush. The execution stays Started
// and the buffer is kept intact so the end attempt can be retried.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "patrol log upload failed: " + e.Err.Error() }

func (e *UploadError) Unwrap() error { return e.Err }

package errors

import "fmt"

// ErrorCode represents a WordScraper error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFolderMissing  ErrorCode = "FOLDER_MISSING"  // 422
	ErrIOFailed       ErrorCode = "IO_FAILED"       // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// ScraperError represents a structured error with code, status, and details.
type ScraperError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ScraperError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ScraperError {
	return &ScraperError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing ledger or state row.
func NewNotFound(what string) *ScraperError {
	return &ScraperError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", what),
		Details: map[string]any{"target": what},
	}
}

// NewFolderMissing creates a 422 error for a configured folder that does
// not exist. Configuration-class errors are the only ones escalated to the
// user; the triggering operation is aborted with no partial file left behind.
func NewFolderMissing(folder string) *ScraperError {
	return &ScraperError{
		Code:    ErrFolderMissing,
		Status:  422,
		Message: fmt.Sprintf("configured folder does not exist: %s", folder),
		Details: map[string]any{"folder": folder},
	}
}

// NewIOFailed creates a 500 error for a ledger or export write failure.
// Callers treat these as transient: the in-memory aggregate is untouched
// and the next debounce cycle retries.
func NewIOFailed(op string, err error) *ScraperError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &ScraperError{
		Code:    ErrIOFailed,
		Status:  500,
		Message: msg,
		Details: map[string]any{"op": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ScraperError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ScraperError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ScraperError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*ScraperError); ok {
		return sErr.Code == code
	}
	return false
}

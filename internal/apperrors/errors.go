package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller does not own the requested resource.
var ErrForbidden = errors.New("forbidden")

// ErrEmptyFile indicates that an uploaded file contained no rows at all.
var ErrEmptyFile = errors.New("file is empty")

// ErrNoValidEntries indicates that an upload was readable but produced no ledger entries.
var ErrNoValidEntries = errors.New("no valid transaction rows found")

// ErrUnsupportedFormat indicates that an upload could not be read as a spreadsheet or delimited text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoStatement indicates that a session has no successfully ingested ledger to report on.
var ErrNoStatement = errors.New("no statement available")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

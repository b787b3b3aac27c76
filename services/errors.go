package services

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for workflow actions. Controllers map these to HTTP
// statuses; every rejected action leaves the syllabus unchanged.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// WorkflowError wraps a sentinel kind with a caller-facing message.
type WorkflowError struct {
	Kind    error
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func (e *WorkflowError) Unwrap() error {
	return e.Kind
}

func unauthorizedf(format string, args ...interface{}) error {
	return &WorkflowError{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func invalidStatef(format string, args ...interface{}) error {
	return &WorkflowError{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) error {
	return &WorkflowError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &WorkflowError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error taxonomy. Selection errors are always caught before any network
// call; domain errors come from a well-formed service reply reporting
// failure; transport errors are everything below that. Advisory failures
// (post-download cleanup) are logged only and never constructed as errors.
var (
	ErrSelection = errors.New("selection error")
	ErrTransport = errors.New("transport error")
	ErrDomain    = errors.New("domain error")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// SelectionErrorf reports a missing or invalid user input.
func SelectionErrorf(format string, args ...any) error {
	return NewAppError("SELECTION_ERROR", fmt.Sprintf(format, args...), ErrSelection)
}

// TransportErrorf reports a network or HTTP layer failure.
func TransportErrorf(format string, args ...any) error {
	return NewAppError("TRANSPORT_ERROR", fmt.Sprintf(format, args...), ErrTransport)
}

// DomainErrorf reports a service-level failure carried in a 2xx reply.
func DomainErrorf(format string, args ...any) error {
	return NewAppError("DOMAIN_ERROR", fmt.Sprintf(format, args...), ErrDomain)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

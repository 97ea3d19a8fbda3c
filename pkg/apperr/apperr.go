package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a categorized application error carrying an HTTP-style
// status class and a human message. Workflows never recover from these;
// they propagate to the HTTP layer for formatting.
type AppError struct {
	Status  int
	Message string
	cause   error
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.cause }

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

func BadRequest(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: message}
}

// DeliveryFailed marks a notification provider failure that is fatal for
// the calling workflow.
func DeliveryFailed(message string) *AppError {
	return &AppError{Status: http.StatusNotImplemented, Message: message}
}

// Wrap keeps the original error reachable via errors.Unwrap while
// presenting the given status and message.
func Wrap(status int, message string, cause error) *AppError {
	return &AppError{Status: status, Message: message, cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(status int, cause error, format string, args ...any) *AppError {
	return &AppError{Status: status, Message: fmt.Sprintf(format, args...), cause: cause}
}

// From extracts an *AppError from err's chain, if any.
func From(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusOf returns the status class of err, defaulting to 500 for
// uncategorized errors.
func StatusOf(err error) int {
	if ae, ok := From(err); ok {
		return ae.Status
	}
	return http.StatusInternalServerError
}

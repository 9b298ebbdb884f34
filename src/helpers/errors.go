package helpers

import (
	"errors"
	"fmt"
	"net/http"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StockPulseError struct {
	Message string
	Cause   error
}

func (e *StockPulseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StockPulseError) Unwrap() error {
	return e.Cause
}

// Distinct error types so callers can map failures to API responses.
// ValidationError covers missing or malformed input, including symbols the
// provider reports as invalid. RateLimitError surfaces upstream call
// frequency limits. UpstreamError is any other provider failure, network or
// parse, and maps to a generic 500.
type ValidationError struct{ StockPulseError }
type NotFoundError struct{ StockPulseError }
type DuplicateError struct{ StockPulseError }
type RateLimitError struct{ StockPulseError }
type UpstreamError struct{ StockPulseError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{StockPulseError{Message: fmt.Sprintf(format, args...)}}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{StockPulseError{Message: fmt.Sprintf(format, args...)}}
}

func NewDuplicateError(format string, args ...interface{}) error {
	return &DuplicateError{StockPulseError{Message: fmt.Sprintf(format, args...)}}
}

func NewRateLimitError(format string, args ...interface{}) error {
	return &RateLimitError{StockPulseError{Message: fmt.Sprintf(format, args...)}}
}

func NewUpstreamError(message string, cause error) error {
	return &UpstreamError{StockPulseError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Classification helpers
// -----------------------------------------------------------------------------

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsDuplicate(err error) bool {
	var e *DuplicateError
	return errors.As(err, &e)
}

func IsRateLimit(err error) bool {
	var e *RateLimitError
	return errors.As(err, &e)
}

// -----------------------------------------------------------------------------

// HTTPStatus maps an error to the status code the API surfaces for it.
// Unclassified errors map to 500 so internals never leak to clients.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err) || IsDuplicate(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsRateLimit(err):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

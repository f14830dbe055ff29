package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorNetwork  = 2   // Indicates the estimation service could not be reached.
	ExitErrorService  = 3   // Indicates the estimation service rejected the job.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorDecode   = 5   // Indicates the service answered with an unusable report.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// User-visible fallback messages.
const (
	// GenericFailureMessage is shown when the service fails without a detail.
	GenericFailureMessage = "Calculation failed"
	// DecodeFailureMessage is shown when a success response cannot be read
	// as a report.
	DecodeFailureMessage = "Calculation failed: the service returned an unreadable report"
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// NetworkError reports that a call to the estimation service could not
// complete: connection refused, DNS failure, timeout or cancellation.
type NetworkError struct {
	// URL is the endpoint that was being called.
	URL string
	// Timeout is true when the call ran out of time.
	Timeout bool
	// Limit is the configured client timeout, when known.
	Limit time.Duration
	// Cause is the transport error.
	Cause error
}

// Error returns a description including the endpoint and the cause.
func (e *NetworkError) Error() string {
	if e.Timeout {
		if e.Limit > 0 {
			return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Limit)
		}
		return fmt.Sprintf("request to %s timed out", e.URL)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Cause)
}

// Unwrap returns the transport error.
func (e *NetworkError) Unwrap() error { return e.Cause }

// ServiceError reports a non-2xx answer from the estimation service.
type ServiceError struct {
	// StatusCode is the HTTP status returned by the service.
	StatusCode int
	// Detail is the service-provided message, or GenericFailureMessage.
	Detail string
}

// Error returns the detail verbatim.
func (e *ServiceError) Error() string { return e.Detail }

// DecodeError reports a 2xx response whose body does not satisfy the report
// schema. Field is the dotted path of the first offending field, empty when
// the body is not a JSON object at all.
type DecodeError struct {
	Field  string
	Reason string
	Cause  error
}

// Error returns a description naming the offending field.
func (e *DecodeError) Error() string {
	switch {
	case e.Field != "" && e.Cause != nil:
		return fmt.Sprintf("decode report field %q: %s: %v", e.Field, e.Reason, e.Cause)
	case e.Field != "":
		return fmt.Sprintf("decode report field %q: %s", e.Field, e.Reason)
	case e.Cause != nil:
		return fmt.Sprintf("decode report: %s: %v", e.Reason, e.Cause)
	}
	return "decode report: " + e.Reason
}

// Unwrap returns the underlying parse error, if any.
func (e *DecodeError) Unwrap() error { return e.Cause }

// UserMessage returns the text shown to the operator for a computation error.
// Service details are passed through verbatim; decode failures share one
// generic message; transport failures describe the outage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Detail == "" {
			return GenericFailureMessage
		}
		return svcErr.Detail
	}
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return DecodeFailureMessage
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout {
			return "Estimation service timed out"
		}
		return fmt.Sprintf("Estimation service unreachable: %v", netErr.Cause)
	}
	return err.Error()
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cfgErr ConfigError
		valErr ValidationError
		svcErr *ServiceError
		decErr *DecodeError
		netErr *NetworkError
	)
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitErrorConfig
	case errors.As(err, &svcErr):
		return ExitErrorService
	case errors.As(err, &decErr):
		return ExitErrorDecode
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &netErr):
		return ExitErrorNetwork
	}
	return ExitErrorGeneric
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type       ErrorType
	Message    string
	Cause      error
	StatusCode int
	Timestamp  time.Time
	Context    map[string]interface{}
}

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorUnknown ErrorType = iota
	ErrorConnection
	ErrorAuthentication
	ErrorPermission
	ErrorNetwork
	ErrorConfiguration
	ErrorUI
	ErrorInternal
	ErrorNotFound
	ErrorConflict
	ErrorValidation
	ErrorUnsupported
)

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// Wrap creates a new AppError wrapping an existing error
func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds context to an AppError
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// GetTypeString returns a human-readable string for the error type
func (e *AppError) GetTypeString() string {
	switch e.Type {
	case ErrorConnection:
		return "Connection Error"
	case ErrorAuthentication:
		return "Authentication Error"
	case ErrorPermission:
		return "Permission Error"
	case ErrorNetwork:
		return "Network Error"
	case ErrorConfiguration:
		return "Configuration Error"
	case ErrorUI:
		return "UI Error"
	case ErrorInternal:
		return "Internal Error"
	case ErrorNotFound:
		return "Not Found"
	case ErrorConflict:
		return "Conflict"
	case ErrorValidation:
		return "Validation Error"
	case ErrorUnsupported:
		return "Not Supported"
	default:
		return "Unknown Error"
	}
}

// IsRecoverable returns true if retrying the same request might succeed
func (e *AppError) IsRecoverable() bool {
	switch e.Type {
	case ErrorNetwork, ErrorConnection:
		return true
	default:
		return false
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorUnknown
}

// Is reports whether err carries an AppError of the given type
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// IsRecoverable reports whether err is an AppError worth retrying
func IsRecoverable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.IsRecoverable()
	}
	return false
}

// TypeForStatus maps an HTTP status code to an ErrorType
func TypeForStatus(code int) ErrorType {
	switch {
	case code == http.StatusUnauthorized:
		return ErrorAuthentication
	case code == http.StatusForbidden:
		return ErrorPermission
	case code == http.StatusNotFound:
		return ErrorNotFound
	case code == http.StatusConflict:
		return ErrorConflict
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return ErrorValidation
	case code == http.StatusNotImplemented:
		return ErrorUnsupported
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return ErrorNetwork
	default:
		return ErrorUnknown
	}
}

// FromStatus builds an AppError for a failed HTTP response
func FromStatus(code int, message string, cause error) *AppError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := Wrap(TypeForStatus(code), message, cause)
	e.StatusCode = code
	return e
}

// FromKubernetes classifies a client-go error. Errors that are not API status
// errors are treated as connection failures.
func FromKubernetes(message string, err error) *AppError {
	if err == nil {
		return nil
	}
	var status apierrors.APIStatus
	if stderrors.As(err, &status) {
		code := int(status.Status().Code)
		return FromStatus(code, message, err)
	}
	return NewConnectionError(message, err)
}

// Common error constructors
func NewConnectionError(message string, cause error) *AppError {
	return Wrap(ErrorConnection, message, cause)
}

func NewAuthError(message string, cause error) *AppError {
	return Wrap(ErrorAuthentication, message, cause)
}

func NewNetworkError(message string, cause error) *AppError {
	return Wrap(ErrorNetwork, message, cause)
}

func NewConfigError(message string, cause error) *AppError {
	return Wrap(ErrorConfiguration, message, cause)
}

func NewUIError(message string, cause error) *AppError {
	return Wrap(ErrorUI, message, cause)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrorNotFound, message)
}

func NewValidationError(message string, cause error) *AppError {
	return Wrap(ErrorValidation, message, cause)
}

func NewUnsupportedError(message string) *AppError {
	return New(ErrorUnsupported, message)
}

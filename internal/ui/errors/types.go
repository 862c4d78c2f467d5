// Package errors turns backend errors into messages fit for a toast.
package errors

import (
	"fmt"
	"time"

	"github.com/katyella/kconsole/internal/format"
)

// ErrorSeverity defines the severity level of errors
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityCritical
)

func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Level is the status level used to color the severity
func (s ErrorSeverity) Level() format.Level {
	switch s {
	case ErrorSeverityInfo:
		return format.LevelInfo
	case ErrorSeverityWarning:
		return format.LevelWarning
	default:
		return format.LevelError
	}
}

// ErrorCategory groups errors by what the user can do about them
type ErrorCategory int

const (
	ErrorCategoryConnection ErrorCategory = iota
	ErrorCategoryAuthentication
	ErrorCategoryResource
	ErrorCategoryConfiguration
	ErrorCategoryNetwork
	ErrorCategoryPermission
	ErrorCategoryValidation
	ErrorCategoryGeneral
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryConnection:
		return "connection"
	case ErrorCategoryAuthentication:
		return "authentication"
	case ErrorCategoryResource:
		return "resource"
	case ErrorCategoryConfiguration:
		return "configuration"
	case ErrorCategoryNetwork:
		return "network"
	case ErrorCategoryPermission:
		return "permission"
	case ErrorCategoryValidation:
		return "validation"
	default:
		return "general"
	}
}

// UserFriendlyError is an error as presented to the user
type UserFriendlyError struct {
	Title           string
	Message         string
	TechnicalDetail string
	Severity        ErrorSeverity
	Category        ErrorCategory
	Timestamp       time.Time
	Retryable       bool
	SuggestedAction string
	OriginalError   error
}

// Error implements the error interface
func (e *UserFriendlyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

// Unwrap returns the mapped error
func (e *UserFriendlyError) Unwrap() error {
	return e.OriginalError
}

// GetSuggestedAction returns what the user should try next
func (e *UserFriendlyError) GetSuggestedAction() string {
	if e.SuggestedAction != "" {
		return e.SuggestedAction
	}

	switch e.Category {
	case ErrorCategoryConnection:
		return "Check the cluster connection and retry"
	case ErrorCategoryAuthentication:
		return "Refresh your token or kubeconfig credentials"
	case ErrorCategoryPermission:
		return "Ask an administrator for access"
	case ErrorCategoryNetwork:
		return "Check your network connection and retry"
	case ErrorCategoryValidation:
		return "Fix the input and try again"
	default:
		return "Press r to refresh"
	}
}

// WithSuggestedAction sets the suggested action
func (e *UserFriendlyError) WithSuggestedAction(action string) *UserFriendlyError {
	e.SuggestedAction = action
	return e
}

// NewUserFriendlyError creates a new user-friendly error
func NewUserFriendlyError(title, message string, severity ErrorSeverity, category ErrorCategory, originalErr error) *UserFriendlyError {
	e := &UserFriendlyError{
		Title:         title,
		Message:       message,
		Severity:      severity,
		Category:      category,
		Timestamp:     time.Now(),
		OriginalError: originalErr,
		Retryable:     isRetryableByCategory(category),
	}
	if originalErr != nil {
		e.TechnicalDetail = originalErr.Error()
	}
	return e
}

func isRetryableByCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryConnection, ErrorCategoryNetwork:
		return true
	default:
		return false
	}
}

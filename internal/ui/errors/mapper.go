package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	apperrors "github.com/katyella/kconsole/internal/errors"
)

const maxDetail = 100

// MapError maps an error from any backend call to a user facing error.
// Typed application errors are mapped by type; anything else falls back to
// message heuristics.
func MapError(err error) *UserFriendlyError {
	if err == nil {
		return nil
	}
	var friendly *UserFriendlyError
	if stderrors.As(err, &friendly) {
		return friendly
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewUserFriendlyError(
			"Request Timeout",
			"The request took too long to complete.",
			ErrorSeverityWarning,
			ErrorCategoryNetwork,
			err,
		)
	}

	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return mapAppError(appErr, err)
	}
	return mapMessage(err)
}

func mapAppError(appErr *apperrors.AppError, err error) *UserFriendlyError {
	detail := truncateError(err.Error(), maxDetail)

	switch appErr.Type {
	case apperrors.ErrorAuthentication:
		return NewUserFriendlyError("Authentication Failed",
			"Your credentials are invalid or have expired.",
			ErrorSeverityError, ErrorCategoryAuthentication, err)
	case apperrors.ErrorPermission:
		return NewUserFriendlyError("Access Denied",
			"You don't have permission to perform this operation.",
			ErrorSeverityError, ErrorCategoryPermission, err)
	case apperrors.ErrorNotFound:
		return NewUserFriendlyError("Not Found", detail,
			ErrorSeverityWarning, ErrorCategoryResource, err).
			WithSuggestedAction("The object may have been deleted; refresh the list")
	case apperrors.ErrorConflict:
		return NewUserFriendlyError("Conflict", detail,
			ErrorSeverityWarning, ErrorCategoryResource, err).
			WithSuggestedAction("The object changed on the server; reload it and retry")
	case apperrors.ErrorValidation:
		return NewUserFriendlyError("Invalid Request", detail,
			ErrorSeverityWarning, ErrorCategoryValidation, err)
	case apperrors.ErrorUnsupported:
		return NewUserFriendlyError("Not Supported", detail,
			ErrorSeverityInfo, ErrorCategoryGeneral, err).
			WithSuggestedAction("This action is not available for the current data source")
	case apperrors.ErrorConfiguration:
		return NewUserFriendlyError("Configuration Error", detail,
			ErrorSeverityError, ErrorCategoryConfiguration, err).
			WithSuggestedAction("Check the KCONSOLE_* settings and your kubeconfig")
	case apperrors.ErrorNetwork:
		return NewUserFriendlyError("Network Error", detail,
			ErrorSeverityWarning, ErrorCategoryNetwork, err)
	case apperrors.ErrorConnection:
		return NewUserFriendlyError("Connection Failed",
			"Cannot reach the cluster or console backend.",
			ErrorSeverityError, ErrorCategoryConnection, err)
	}
	return mapMessage(err)
}

func mapMessage(err error) *UserFriendlyError {
	errStr := err.Error()
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "connection refused"):
		return NewUserFriendlyError(
			"Connection Failed",
			"The server refused the connection. It may be down or unreachable.",
			ErrorSeverityError,
			ErrorCategoryConnection,
			err,
		).WithSuggestedAction("Check that the server is running and reachable from your network")
	case strings.Contains(errLower, "timeout") || strings.Contains(errLower, "deadline exceeded"):
		return NewUserFriendlyError(
			"Connection Timeout",
			"The request timed out. This may be due to network issues or server load.",
			ErrorSeverityWarning,
			ErrorCategoryNetwork,
			err,
		)
	case strings.Contains(errLower, "no such host"):
		return NewUserFriendlyError(
			"DNS Resolution Failed",
			"Cannot resolve the server hostname.",
			ErrorSeverityError,
			ErrorCategoryNetwork,
			err,
		).WithSuggestedAction("Verify the server URL")
	case strings.Contains(errLower, "x509") || strings.Contains(errLower, "certificate"):
		return NewUserFriendlyError(
			"Certificate Error",
			"The server's TLS certificate could not be verified.",
			ErrorSeverityError,
			ErrorCategoryNetwork,
			err,
		).WithSuggestedAction("Check the certificate or set KCONSOLE_INSECURE_SKIP_VERIFY for test servers")
	case strings.Contains(errLower, "no matches for kind"):
		return NewUserFriendlyError(
			"API Version Mismatch",
			"The resource type is not served by this cluster.",
			ErrorSeverityWarning,
			ErrorCategoryResource,
			err,
		)
	}

	return NewUserFriendlyError(
		"Unexpected Error",
		fmt.Sprintf("An unexpected error occurred: %s", truncateError(errStr, maxDetail)),
		ErrorSeverityError,
		ErrorCategoryGeneral,
		err,
	)
}

func truncateError(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}

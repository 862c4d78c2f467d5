package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		title     string
		category  ErrorCategory
		retryable bool
	}{
		{
			name:     "forbidden status",
			err:      apperrors.FromStatus(403, "", nil),
			title:    "Access Denied",
			category: ErrorCategoryPermission,
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("get pod: %w", apperrors.NewNotFoundError("pod web not found")),
			title:    "Not Found",
			category: ErrorCategoryResource,
		},
		{
			name:      "server error",
			err:       apperrors.FromStatus(503, "unavailable", nil),
			title:     "Network Error",
			category:  ErrorCategoryNetwork,
			retryable: true,
		},
		{
			name:     "unsupported",
			err:      apperrors.NewUnsupportedError("node shell requires the console API"),
			title:    "Not Supported",
			category: ErrorCategoryGeneral,
		},
		{
			name:      "deadline",
			err:       fmt.Errorf("list: %w", context.DeadlineExceeded),
			title:     "Request Timeout",
			category:  ErrorCategoryNetwork,
			retryable: true,
		},
		{
			name:      "refused",
			err:       stderrors.New("dial tcp 127.0.0.1:8080: connect: connection refused"),
			title:     "Connection Failed",
			category:  ErrorCategoryConnection,
			retryable: true,
		},
		{
			name:      "certificate",
			err:       stderrors.New("x509: certificate signed by unknown authority"),
			title:     "Certificate Error",
			category:  ErrorCategoryNetwork,
			retryable: true,
		},
		{
			name:     "unknown",
			err:      stderrors.New("boom"),
			title:    "Unexpected Error",
			category: ErrorCategoryGeneral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.title, got.Title)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.retryable, got.Retryable)
			assert.NotEmpty(t, got.GetSuggestedAction())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapErrorPassThrough(t *testing.T) {
	assert.Nil(t, MapError(nil))

	friendly := NewUserFriendlyError("Saved", "ok", ErrorSeverityInfo, ErrorCategoryGeneral, nil)
	assert.Same(t, friendly, MapError(fmt.Errorf("wrapped: %w", friendly)))
}

func TestUnknownMessageIsTruncated(t *testing.T) {
	got := MapError(stderrors.New(strings.Repeat("x", 300)))
	assert.LessOrEqual(t, len(got.Message), len("An unexpected error occurred: ")+maxDetail)
	assert.True(t, strings.HasSuffix(got.Message, "..."))
}

func TestSeverityLevel(t *testing.T) {
	assert.Equal(t, format.LevelInfo, ErrorSeverityInfo.Level())
	assert.Equal(t, format.LevelWarning, ErrorSeverityWarning.Level())
	assert.Equal(t, format.LevelError, ErrorSeverityCritical.Level())
}

package resources

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// IsRetryable determines if an error is worth retrying
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.IsRecoverable()
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var status apierrors.APIStatus
	if stderrors.As(err, &status) {
		return isTransientStatus(int(status.Status().Code))
	}
	return false
}

func isTransientStatus(code int) bool {
	switch code {
	case constants.HTTPStatusRequestTimeout,
		constants.HTTPStatusTooManyRequests,
		constants.HTTPStatusInternalServerError,
		constants.HTTPStatusBadGateway,
		constants.HTTPStatusServiceUnavailable,
		constants.HTTPStatusGatewayTimeout:
		return true
	}
	return false
}

// statusCode extracts an HTTP status code from err, or 0
func statusCode(err error) int {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	var status apierrors.APIStatus
	if stderrors.As(err, &status) {
		return int(status.Status().Code)
	}
	return 0
}

// GetRetryDelay returns the delay before the given attempt (1-based).
// Rate limited requests back off exponentially, everything else linearly,
// both capped at DefaultMaxDelay.
func GetRetryDelay(err error, attempt int) time.Duration {
	var delay time.Duration
	if statusCode(err) == constants.HTTPStatusTooManyRequests {
		delay = time.Duration(1<<uint(attempt)) * constants.DefaultInitialDelay
	} else {
		delay = time.Duration(attempt) * constants.DefaultInitialDelay
	}
	if delay > constants.DefaultMaxDelay {
		return constants.DefaultMaxDelay
	}
	return delay
}

// RetryOperation performs an operation with retry logic
func RetryOperation[T any](ctx context.Context, maxRetries int, operation func(ctx context.Context) (T, error)) (T, error) {
	return retryOperation(ctx, maxRetries, GetRetryDelay, operation)
}

func retryOperation[T any](ctx context.Context, maxRetries int, delayFn func(error, int) time.Duration, operation func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == maxRetries || !IsRetryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delayFn(err, attempt+1)):
		}
	}

	if maxRetries == 0 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("operation failed after %d attempts: %w", maxRetries+1, lastErr)
}

// RetryBackend retries idempotent reads of the wrapped backend. Mutations and
// streaming sessions pass straight through.
type RetryBackend struct {
	Backend
	maxRetries int
	delay      func(error, int) time.Duration
}

// NewRetryBackend wraps backend with retry logic for reads
func NewRetryBackend(backend Backend, maxRetries int) *RetryBackend {
	return &RetryBackend{Backend: backend, maxRetries: maxRetries, delay: GetRetryDelay}
}

// WithDelay replaces the backoff schedule
func (r *RetryBackend) WithDelay(fn func(err error, attempt int) time.Duration) *RetryBackend {
	r.delay = fn
	return r
}

// ListClusters with retry logic
func (r *RetryBackend) ListClusters(ctx context.Context) ([]Cluster, error) {
	return retryOperation(ctx, r.maxRetries, r.delay, func(ctx context.Context) ([]Cluster, error) {
		return r.Backend.ListClusters(ctx)
	})
}

// List with retry logic
func (r *RetryBackend) List(ctx context.Context, cluster string, rt ResourceType, opts ListOptions) (*List, error) {
	return retryOperation(ctx, r.maxRetries, r.delay, func(ctx context.Context) (*List, error) {
		return r.Backend.List(ctx, cluster, rt, opts)
	})
}

// Get with retry logic
func (r *RetryBackend) Get(ctx context.Context, ref Ref) (*unstructured.Unstructured, error) {
	return retryOperation(ctx, r.maxRetries, r.delay, func(ctx context.Context) (*unstructured.Unstructured, error) {
		return r.Backend.Get(ctx, ref)
	})
}

// Search with retry logic
func (r *RetryBackend) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	return retryOperation(ctx, r.maxRetries, r.delay, func(ctx context.Context) ([]SearchResult, error) {
		return r.Backend.Search(ctx, q)
	})
}

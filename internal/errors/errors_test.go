package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{http.StatusUnauthorized, ErrorAuthentication},
		{http.StatusForbidden, ErrorPermission},
		{http.StatusNotFound, ErrorNotFound},
		{http.StatusConflict, ErrorConflict},
		{http.StatusBadRequest, ErrorValidation},
		{http.StatusUnprocessableEntity, ErrorValidation},
		{http.StatusNotImplemented, ErrorUnsupported},
		{http.StatusTooManyRequests, ErrorNetwork},
		{http.StatusRequestTimeout, ErrorNetwork},
		{http.StatusBadGateway, ErrorNetwork},
		{http.StatusTeapot, ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForStatus(tt.code))
		})
	}
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(http.StatusServiceUnavailable, "", nil)
	assert.Equal(t, "Service Unavailable", err.Message)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
	assert.True(t, err.IsRecoverable())

	err = FromStatus(http.StatusForbidden, "pods is forbidden", nil)
	assert.False(t, err.IsRecoverable())
	assert.Equal(t, "Permission Error", err.GetTypeString())
}

func TestFromKubernetes(t *testing.T) {
	gr := schema.GroupResource{Resource: "pods"}

	notFound := FromKubernetes("get pod", apierrors.NewNotFound(gr, "web-0"))
	require.NotNil(t, notFound)
	assert.Equal(t, ErrorNotFound, notFound.Type)
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)

	conflict := FromKubernetes("update pod", apierrors.NewConflict(gr, "web-0", fmt.Errorf("stale")))
	assert.Equal(t, ErrorConflict, conflict.Type)

	conn := FromKubernetes("list pods", fmt.Errorf("dial tcp: connection refused"))
	assert.Equal(t, ErrorConnection, conn.Type)
	assert.True(t, conn.IsRecoverable())

	assert.Nil(t, FromKubernetes("noop", nil))
}

func TestTypeOfWrapped(t *testing.T) {
	base := NewNotFoundError("deployment not found")
	wrapped := fmt.Errorf("loading detail: %w", base)

	assert.Equal(t, ErrorNotFound, TypeOf(wrapped))
	assert.True(t, Is(wrapped, ErrorNotFound))
	assert.False(t, Is(nil, ErrorNotFound))
	assert.Equal(t, ErrorUnknown, TypeOf(fmt.Errorf("plain")))
	assert.False(t, IsRecoverable(wrapped))
	assert.True(t, IsRecoverable(fmt.Errorf("x: %w", NewNetworkError("timeout", nil))))
}

func TestAppErrorMessage(t *testing.T) {
	err := Wrap(ErrorInternal, "decode response", fmt.Errorf("unexpected EOF"))
	assert.Equal(t, "decode response: unexpected EOF", err.Error())
	assert.Equal(t, "pods", err.WithContext("resource", "pods").Context["resource"])
}

package multicluster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		typ      EventType
		expected string
	}{
		{EventConnected, "Connected"},
		{EventDisconnected, "Disconnected"},
		{EventError, "Error"},
		{EventType(42), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.typ.String())
	}
}

func TestMonitor_Transitions(t *testing.T) {
	b := fake.NewBackend("dev", "prod")
	m := NewMonitor(b, time.Minute)

	var mu sync.Mutex
	var heard []Event
	m.AddListener(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		heard = append(heard, e)
	})
	ctx := context.Background()

	assert.Empty(t, m.Check(ctx))
	assert.True(t, m.IsHealthy("dev"))

	b.SetClusterStatus("prod", "Failed", "dial tcp: timeout")
	events := m.Check(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, EventDisconnected, events[0].Type)
	assert.Equal(t, "prod", events[0].Cluster)
	assert.Equal(t, "dial tcp: timeout", events[0].Error)
	assert.False(t, m.IsHealthy("prod"))

	// No repeat while still failing
	assert.Empty(t, m.Check(ctx))

	b.SetClusterStatus("prod", "Connected", "")
	events = m.Check(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, EventConnected, events[0].Type)

	mu.Lock()
	assert.Len(t, heard, 2)
	mu.Unlock()
	assert.Len(t, m.Events(0), 2)
	assert.Len(t, m.Events(1), 1)
}

func TestMonitor_InitialFailureAndBackendError(t *testing.T) {
	b := fake.NewBackend("dev")
	b.SetClusterStatus("dev", "Failed", "forbidden")
	m := NewMonitor(b, time.Minute)
	ctx := context.Background()

	events := m.Check(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)

	b.SetError("clusters", errors.New("unreachable"))
	events = m.Check(ctx)
	require.Len(t, events, 1)
	assert.Equal(t, "", events[0].Cluster)
	assert.Equal(t, "unreachable", events[0].Error)

	status := m.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "dev", status[0].Name)
}

func TestMonitor_StartStop(t *testing.T) {
	b := fake.NewBackend("dev")
	m := NewMonitor(b, 10*time.Millisecond)

	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Start(context.Background()))

	assert.Eventually(t, func() bool { return b.CallCount("clusters") >= 2 }, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}

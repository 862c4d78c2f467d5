package ui

import (
	"testing"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/katyella/kconsole/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClustersView(t *testing.T) {
	backend := fake.NewBackend("prod", "staging")
	backend.SetClusterStatus("staging", constants.StatusFailed, "connection refused")
	v := NewClustersView(newTestEnv(t, backend))
	v.SetSize(120, 20)

	_, _ = v.Update(runCmd(t, v.fetch()))

	out := v.View()
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "1/2 clusters reachable")
}

func TestClustersViewOpensCluster(t *testing.T) {
	v := NewClustersView(newTestEnv(t, fake.NewBackend("prod")))
	v.SetSize(120, 20)
	_, _ = v.Update(runCmd(t, v.fetch()))

	_, cmd := v.Update(keyPress("enter"))
	msg, ok := runCmd(t, cmd).(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, router.ListPath("prod", "", "pods"), msg.path)
}

func TestClustersViewError(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.SetError("clusters", assert.AnError)
	v := NewClustersView(newTestEnv(t, backend))

	_, _ = v.Update(runCmd(t, v.fetch()))

	assert.False(t, v.loading)
	assert.ErrorIs(t, v.err, assert.AnError)
}

func TestClustersViewRefreshInvalidates(t *testing.T) {
	backend := fake.NewBackend("prod")
	env := newTestEnv(t, backend)
	v := NewClustersView(env)
	_, _ = v.Update(runCmd(t, v.fetch()))
	_, _ = v.Update(runCmd(t, v.fetch()))
	assert.Equal(t, 1, backend.CallCount("clusters"))

	// A stale value is served while it revalidates in the background
	_, cmd := v.Update(keyPress("r"))
	_, _ = v.Update(runCmd(t, cmd))
	env.Cache.Wait()
	assert.Equal(t, 2, backend.CallCount("clusters"))
}

package ui

import (
	"testing"

	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/katyella/kconsole/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchBackend() *fake.Backend {
	backend := fake.NewBackend("prod", "dev")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "checkout-1"))
	backend.Add("dev", pods, testObject("pods", "shop", "checkout-2"), testObject("pods", "shop", "cart"))
	return backend
}

func TestSearchViewRunsQuery(t *testing.T) {
	v := NewSearchView(newTestEnv(t, searchBackend()), "checkout", "")
	v.SetSize(120, 30)
	assert.False(t, v.Capturing())

	_, _ = v.Update(runCmd(t, v.Init()))

	require.Len(t, v.results, 2)
	assert.Contains(t, v.View(), "checkout-1")
	assert.Contains(t, v.View(), "checkout-2")
}

func TestSearchViewScopedToCluster(t *testing.T) {
	v := NewSearchView(newTestEnv(t, searchBackend()), "checkout", "dev")
	_, _ = v.Update(runCmd(t, v.Init()))

	require.Len(t, v.results, 1)
	assert.Equal(t, "dev", v.results[0].Cluster)
	assert.Equal(t, "search · dev", v.Title())
}

func TestSearchViewTyping(t *testing.T) {
	v := NewSearchView(newTestEnv(t, searchBackend()), "", "")
	v.SetSize(120, 30)
	require.True(t, v.Capturing())
	assert.Contains(t, v.View(), "Type a query")

	for _, r := range "cart" {
		_, _ = v.Update(keyPress(string(r)))
	}
	_, cmd := v.Update(keyPress("enter"))
	assert.False(t, v.Capturing())
	_, _ = v.Update(runCmd(t, cmd))

	require.Len(t, v.results, 1)
	_, cmd = v.Update(keyPress("enter"))
	msg, ok := runCmd(t, cmd).(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, router.DetailPath("dev", "shop", "pods", "cart"), msg.path)
}

func TestSearchViewIgnoresStaleResults(t *testing.T) {
	v := NewSearchView(newTestEnv(t, searchBackend()), "checkout", "")
	stale := runCmd(t, v.Init())
	_ = v.run("cart")

	_, _ = v.Update(stale)
	assert.Empty(t, v.results)
	assert.True(t, v.running)
}

func TestSearchViewNoMatches(t *testing.T) {
	v := NewSearchView(newTestEnv(t, searchBackend()), "nothing", "")
	_, _ = v.Update(runCmd(t, v.Init()))
	assert.Contains(t, v.View(), "No matches for nothing")
}

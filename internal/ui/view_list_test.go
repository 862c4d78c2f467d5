package ui

import (
	"fmt"
	"testing"

	"github.com/katyella/kconsole/internal/errors"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/katyella/kconsole/internal/router"
	"github.com/katyella/kconsole/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func loadedListView(t *testing.T, backend *fake.Backend, cluster, namespace string) (*ListView, *Env) {
	t.Helper()
	env := newTestEnv(t, backend)
	v := NewListView(env, cluster, namespace, resources.MustLookup("pods"), "prod")
	v.SetSize(120, 30)
	_, _ = v.Update(runCmd(t, v.fetch()))
	require.NoError(t, v.err)
	return v, env
}

func rowNames(rows []table.Row) []string {
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name())
	}
	return names
}

func TestListViewLoadsRows(t *testing.T) {
	backend := fake.NewBackend("prod")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "api"), testObject("pods", "shop", "web"), testObject("pods", "ops", "job"))

	v, _ := loadedListView(t, backend, "prod", "shop")

	assert.Equal(t, []string{"api", "web"}, rowNames(v.table.state.Rows()))
	assert.Equal(t, "pods · prod/shop", v.Title())
	cluster, ns := v.Context()
	assert.Equal(t, "prod", cluster)
	assert.Equal(t, "shop", ns)
	assert.Contains(t, v.View(), "api")
}

func TestListViewServesFromCache(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Add("prod", resources.MustLookup("pods"), testObject("pods", "shop", "api"))

	v, _ := loadedListView(t, backend, "prod", "shop")
	_, _ = v.Update(runCmd(t, v.fetch()))

	assert.Equal(t, 1, backend.CallCount("list"))
}

func TestListViewFirstLoadError(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.SetError("list", errors.NewAuthError("token expired", nil))
	env := newTestEnv(t, backend)
	v := NewListView(env, "prod", "", resources.MustLookup("pods"), "prod")

	_, cmd := v.Update(runCmd(t, v.fetch()))

	assert.Nil(t, cmd)
	assert.Error(t, v.err)
	assert.False(t, v.loaded)
}

func TestListViewIgnoresOtherViews(t *testing.T) {
	backend := fake.NewBackend("prod")
	v, _ := loadedListView(t, backend, "prod", "shop")

	_, _ = v.Update(listLoadedMsg{viewID: v.id + 100, rows: []table.Row{{ID: "x"}}})

	assert.Empty(t, v.table.state.Rows())
}

func TestListViewOptimisticDelete(t *testing.T) {
	tests := []struct {
		name        string
		fail        error
		wantRows    []string
		wantRemoved int
	}{
		{name: "success keeps the row removed", wantRows: []string{"web"}, wantRemoved: 1},
		{name: "failure restores the row", fail: errors.FromStatus(403, "forbidden", nil), wantRows: []string{"api", "web"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := fake.NewBackend("prod")
			backend.Add("prod", resources.MustLookup("pods"), testObject("pods", "shop", "api"), testObject("pods", "shop", "web"))
			if tt.fail != nil {
				backend.SetError("delete", tt.fail)
			}
			v, _ := loadedListView(t, backend, "prod", "shop")

			_, cmd := v.Update(keyPress("d"))
			modal := openedModal(t, cmd)
			_, confirm := modal.Update(keyPress("y"))

			_, deleteCmd := v.Update(runCmd(t, confirm))
			assert.Equal(t, []string{"web"}, rowNames(v.table.state.Rows()))

			done := runCmd(t, deleteCmd)
			_, _ = v.Update(done)
			assert.ElementsMatch(t, tt.wantRows, rowNames(v.table.state.Rows()))
			assert.Len(t, v.removed, tt.wantRemoved)
		})
	}
}

func TestListViewDeletedRowStaysHiddenUntilFreshLoad(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Add("prod", resources.MustLookup("pods"), testObject("pods", "shop", "api"), testObject("pods", "shop", "web"))
	v, env := loadedListView(t, backend, "prod", "shop")

	_, cmd := v.Update(keyPress("d"))
	_, confirm := openedModal(t, cmd).Update(keyPress("y"))
	_, deleteCmd := v.Update(runCmd(t, confirm))
	_, _ = v.Update(runCmd(t, deleteCmd))

	// The follow-up fetch serves the invalidated list, which still has the row
	stale, ok := runCmd(t, v.fetch()).(listLoadedMsg)
	require.True(t, ok)
	assert.True(t, stale.stale)
	assert.Contains(t, rowNames(stale.rows), "api")
	_, _ = v.Update(stale)
	assert.Equal(t, []string{"web"}, rowNames(v.table.state.Rows()))

	env.Cache.Wait()
	_, _ = v.Update(cacheUpdatedMsg{key: v.cacheKey()})
	assert.Equal(t, []string{"web"}, rowNames(v.table.state.Rows()))
	assert.Empty(t, v.removed)
}

func TestListViewAggregate(t *testing.T) {
	backend := fake.NewBackend("prod", "staging", "dev")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "api"))
	backend.Add("dev", pods, testObject("pods", "shop", "api"))
	backend.SetError("list:staging", fmt.Errorf("connection refused"))

	env := newTestEnv(t, backend)
	v := NewListView(env, "", "shop", pods, "prod")
	_, _ = v.Update(runCmd(t, v.fetch()))

	require.NoError(t, v.err)
	assert.True(t, v.aggregate)
	assert.Empty(t, v.namespace)
	assert.Equal(t, []string{"staging"}, v.failed)
	clusters := []string{}
	for _, r := range v.table.state.Rows() {
		clusters = append(clusters, r.Cluster)
	}
	assert.ElementsMatch(t, []string{"prod", "dev"}, clusters)
	assert.Contains(t, v.View(), "unreachable clusters")
}

func TestListViewSearchFilters(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Add("prod", resources.MustLookup("pods"), testObject("pods", "shop", "api"), testObject("pods", "shop", "web"))
	v, _ := loadedListView(t, backend, "prod", "shop")

	_, _ = v.Update(keyPress("/"))
	require.True(t, v.Capturing())
	for _, r := range "we" {
		_, _ = v.Update(keyPress(string(r)))
	}
	assert.Equal(t, []string{"web"}, rowNames(v.table.state.Filtered()))

	_, _ = v.Update(keyPress("esc"))
	assert.False(t, v.Capturing())
	assert.Len(t, v.table.state.Filtered(), 2)
}

func TestListViewNavigation(t *testing.T) {
	backend := fake.NewBackend("prod")
	backend.Add("prod", resources.MustLookup("pods"), testObject("pods", "shop", "api"))
	v, _ := loadedListView(t, backend, "prod", "shop")

	tests := []struct {
		key  string
		want string
	}{
		{"enter", "/clusters/prod/namespaces/shop/pods/api"},
		{"l", "/clusters/prod/namespaces/shop/pods/api/logs"},
		{"x", "/clusters/prod/namespaces/shop/pods/api/exec"},
		{"a", "/all/pods"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, cmd := v.Update(keyPress(tt.key))
			msg, ok := runCmd(t, cmd).(navigateMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg.path)
			_, ok = router.Resolve(msg.path)
			assert.True(t, ok)
		})
	}
}

func TestListViewCacheUpdate(t *testing.T) {
	backend := fake.NewBackend("prod")
	pods := resources.MustLookup("pods")
	backend.Add("prod", pods, testObject("pods", "shop", "api"))
	v, env := loadedListView(t, backend, "prod", "shop")

	list := &resources.List{Items: []unstructured.Unstructured{*testObject("pods", "shop", "api"), *testObject("pods", "shop", "new")}}
	env.Cache.Set(v.cacheKey(), list)
	_, _ = v.Update(cacheUpdatedMsg{key: v.cacheKey()})

	assert.Equal(t, []string{"api", "new"}, rowNames(v.table.state.Rows()))
}

package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources/fake"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/router"
	"github.com/katyella/kconsole/internal/ui/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := NewApp(newTestEnv(t, fake.NewBackend("prod", "dev")), "/", "prod")
	_, _ = a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	// Open the start route the way Init does, without running its commands
	_ = a.open(a.start, true)
	require.NotNil(t, a.view)
	return a
}

func TestAppOpensRoutes(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		cluster string
		ns      string
	}{
		{"/", "*ui.ClustersView", "prod", ""},
		{"/clusters/dev/pods", "*ui.ListView", "dev", ""},
		{"/clusters/dev/namespaces/shop/deploy", "*ui.ListView", "dev", "shop"},
		{"/all/pods", "*ui.ListView", "prod", ""},
		{"/clusters/dev/namespaces/shop/pods/api", "*ui.DetailView", "dev", "shop"},
		{"/clusters/dev/nodes/n1", "*ui.DetailView", "dev", ""},
		{"/clusters/dev/namespaces/shop/pods/api/logs?container=app", "*ui.LogView", "dev", "shop"},
		{"/clusters/dev/namespaces/shop/pods/api/exec", "*ui.TerminalView", "dev", "shop"},
		{"/clusters/dev/nodes/n1/shell", "*ui.TerminalView", "dev", ""},
		{"/search?q=api", "*ui.SearchView", "prod", ""},
		{"/users", "*ui.UsersView", "prod", ""},
		{"/groups", "*ui.GroupsView", "prod", ""},
		{"/audit/settings", "*ui.AuditView", "prod", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			a := newTestApp(t)
			_, cmd := a.Update(navigateMsg{path: tt.path})
			require.NotNil(t, cmd)

			assert.Equal(t, tt.want, fmt.Sprintf("%T", a.view))
			assert.Equal(t, tt.path, a.Path())
			assert.Equal(t, tt.cluster, a.cluster)
			assert.Equal(t, tt.ns, a.namespace)
			if c, ok := a.view.(closer); ok {
				c.Close()
			}
		})
	}
}

func TestAppUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.Update(navigateMsg{path: "/clusters/prod/widgets"})

	assert.Equal(t, "/", a.Path())
	_, cmd := a.Update(navigateMsg{path: "/nope"})
	msg, ok := runCmd(t, cmd).(toastMsg)
	require.True(t, ok)
	assert.Equal(t, format.LevelWarning, msg.level)
}

func TestAppBack(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.Update(navigateMsg{path: "/"})
	_, _ = a.Update(navigateMsg{path: "/clusters/prod/pods"})
	_, _ = a.Update(navigateMsg{path: "/clusters/prod/namespaces/shop/pods/api"})

	_, _ = a.Update(backMsg{})
	assert.Equal(t, "/clusters/prod/pods", a.Path())
	assert.IsType(t, &ListView{}, a.view)

	_, _ = a.Update(backMsg{})
	_, _ = a.Update(backMsg{})
	assert.Equal(t, "/", a.Path())
}

func TestAppEscGoesBack(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(keyPress("esc"))
	assert.IsType(t, backMsg{}, runCmd(t, cmd))
}

func TestAppErrorToast(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.Update(errMsg{title: "Delete failed", err: fmt.Errorf("connection refused")})

	toasts := a.notifier.Visible(testNow)
	require.Len(t, toasts, 1)
	assert.Equal(t, "Delete failed", toasts[0].Title)
	assert.Equal(t, format.LevelError, toasts[0].Level)
}

func TestAppClusterEvents(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.Update(clusterEventMsg{event: multicluster.Event{Type: multicluster.EventDisconnected, Message: "backend down"}})
	assert.True(t, a.backendDown)
	assert.Contains(t, a.renderHeader(), "disconnected")

	_, _ = a.Update(clusterEventMsg{event: multicluster.Event{Type: multicluster.EventConnected}})
	assert.False(t, a.backendDown)
	assert.Equal(t, 2, a.notifier.Len())
}

func TestAppModalCapturesKeys(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(keyPress(":"))
	_, _ = a.Update(runCmd(t, cmd))
	require.NotNil(t, a.modal)

	// q types into the palette instead of quitting
	_, _ = a.Update(keyPress("q"))
	require.NotNil(t, a.modal)
	assert.Contains(t, a.View(), "Command")

	_, _ = a.Update(keyPress("esc"))
	assert.Nil(t, a.modal)
}

func TestAppRunCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pods", "/clusters/prod/pods"},
		{"deploy", "/clusters/prod/deployments"},
		{"po api", "/clusters/prod/namespaces/default/pods/api"},
		{"nodes n1", "/clusters/prod/nodes/n1"},
		{"ns shop", "/clusters/prod/namespaces/shop/pods"},
		{"ctx dev", "/clusters/dev/pods"},
		{"all svc", "/all/services"},
		{"search api", "/search?q=api"},
		{"users", "/users"},
		{"logs api", "/clusters/prod/namespaces/default/pods/api/logs"},
		{"/clusters/dev/nodes", "/clusters/dev/nodes"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a := newTestApp(t)
			cmd, err := commands.ParseCommand(tt.input)
			require.NoError(t, err)

			msg, ok := runCmd(t, a.run(cmd)).(navigateMsg)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg.path)
		})
	}
}

func TestAppRunNeedsCluster(t *testing.T) {
	a := NewApp(newTestEnv(t, fake.NewBackend("prod")), "/", "")
	cmd, err := commands.ParseCommand("pods")
	require.NoError(t, err)

	assert.NotNil(t, a.run(cmd))
	assert.Empty(t, a.cluster)
}

func TestAppThemeToggle(t *testing.T) {
	a := newTestApp(t)
	before := a.env.Styles.GetTheme().Name
	_, cmd := a.Update(keyPress("T"))
	require.NotNil(t, cmd)
	assert.NotEqual(t, before, a.env.Styles.GetTheme().Name)
}

func TestAppView(t *testing.T) {
	a := newTestApp(t)
	out := a.View()
	assert.Contains(t, out, "kconsole")
	assert.Contains(t, out, "Workloads")

	_, _ = a.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, a.View(), "Terminal too small")
}

func TestOverlayTopRight(t *testing.T) {
	base := strings.Join([]string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}, "\n")
	got := strings.Split(overlayTopRight(base, "XX\nYY", 10), "\n")

	assert.Equal(t, []string{"aaaaaaaaXX", "bbbbbbbbYY", "cccccccccc"}, got)
}

func TestAppSidebarClick(t *testing.T) {
	a := newTestApp(t)
	require.IsType(t, &ClustersView{}, a.view)
	entries := sidebarEntries()
	require.True(t, entries[0].heading())
	require.False(t, entries[1].heading())

	click := func(x, y int) tea.Cmd {
		_, cmd := a.Update(tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
		return cmd
	}
	msg, ok := runCmd(t, click(2, constants.HeaderHeight+1)).(navigateMsg)
	require.True(t, ok)
	assert.Equal(t, router.ListPath("prod", "", entries[1].rt.Ref()), msg.path)

	assert.Nil(t, click(2, constants.HeaderHeight), "category heading")
	assert.Nil(t, click(constants.SidebarWidth+5, constants.HeaderHeight+1), "main pane")
	assert.Nil(t, click(2, 0), "header")

	a.modal = NewConfirmModal(a.env.Styles, "Delete", "sure?", nil)
	assert.Nil(t, click(2, constants.HeaderHeight+1))
}

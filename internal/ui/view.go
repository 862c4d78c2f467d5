package ui

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/query"
	uierrors "github.com/katyella/kconsole/internal/ui/errors"
	"github.com/katyella/kconsole/internal/ui/styles"
)

// View is one routed screen
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Title is shown in the header
	Title() string
	// Capturing reports whether keystrokes go to a text input, which
	// suspends the single letter global keys
	Capturing() bool
	// Bindings are the keys shown in the status bar
	Bindings() []key.Binding
}

// contextual is implemented by views bound to a cluster and namespace
type contextual interface {
	Context() (cluster, namespace string)
}

// closer is implemented by views holding streams
type closer interface {
	Close()
}

var viewIDs atomic.Int64

// nextViewID tags async results so a view ignores replies meant for an
// earlier view of the same route
func nextViewID() int64 {
	return viewIDs.Add(1)
}

func renderLoading(sm *styles.StyleManager, spinner string) string {
	return styles.CreateMutedStyle(sm.GetTheme()).Render(spinner + " " + constants.LoadingMessage)
}

func renderError(sm *styles.StyleManager, err error) string {
	friendly := uierrors.MapError(err)
	ds := sm.GetDialogStyles()
	return lipgloss.JoinVertical(lipgloss.Left,
		ds.Error.Bold(true).Render(friendly.Title),
		ds.Content.Render(friendly.Message),
		ds.Hint.Render(friendly.GetSuggestedAction()),
	)
}

func renderEmpty(sm *styles.StyleManager, text string) string {
	if text == "" {
		text = constants.EmptyListMessage
	}
	return styles.CreateMutedStyle(sm.GetTheme()).Render(text)
}

// invalidateResource marks the cached lists of rt stale in cluster and in
// the aggregate view
func invalidateResource(c *query.Cache, cluster string, rt resources.ResourceType) {
	c.Invalidate(query.Prefix(cluster, rt.Ref()))
	c.Invalidate(query.Prefix(aggregateCluster, rt.Ref()))
}

// aggregateCluster is the cluster segment of aggregate cache keys
const aggregateCluster = "*"

// refreshMsg is the periodic reload of one view
type refreshMsg struct {
	viewID int64
}

func (e *Env) scheduleRefresh(viewID int64) tea.Cmd {
	return tea.Tick(e.refreshInterval(), func(time.Time) tea.Msg { return refreshMsg{viewID: viewID} })
}

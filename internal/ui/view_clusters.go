package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/router"
	"github.com/katyella/kconsole/internal/table"
)

const clustersKey = "clusters"

type clustersLoadedMsg struct {
	viewID   int64
	clusters []resources.Cluster
	err      error
}

// ClustersView lists the clusters of the backend with their health
type ClustersView struct {
	env      *Env
	id       int64
	table    *dataTable
	clusters []resources.Cluster
	spinner  spinner.Model
	loading  bool
	err      error
}

var clusterColumns = []table.Column{
	{Key: table.KeyName, Title: "NAME", Width: 24, Sortable: true},
	{Key: "status", Title: "STATUS", Width: 14, Sortable: true},
	{Key: "version", Title: "VERSION", Width: 14, Sortable: true},
	{Key: "default", Title: "DEFAULT", Width: 8},
	{Key: "error", Title: "ERROR", Width: 40},
}

func NewClustersView(env *Env) *ClustersView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &ClustersView{
		env:     env,
		id:      nextViewID(),
		table:   newDataTable(clusterColumns, env.pageSize(), env.Styles, env.Keys),
		spinner: sp,
		loading: true,
	}
}

func (v *ClustersView) Title() string   { return "clusters" }
func (v *ClustersView) Capturing() bool { return false }

func (v *ClustersView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Enter, k.Refresh, k.Aggregate, k.SortNext}
}

func (v *ClustersView) Init() tea.Cmd {
	return tea.Batch(v.fetch(), v.spinner.Tick, v.env.scheduleRefresh(v.id))
}

func (v *ClustersView) fetch() tea.Cmd {
	env, id := v.env, v.id
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		res, err := env.Cache.Fetch(ctx, clustersKey, func(ctx context.Context) (any, error) {
			return env.Backend.ListClusters(ctx)
		})
		if err != nil {
			return clustersLoadedMsg{viewID: id, err: err}
		}
		return clustersLoadedMsg{viewID: id, clusters: res.Value.([]resources.Cluster)}
	}
}

func (v *ClustersView) SetSize(width, height int) {
	v.table.SetSize(width, height)
}

func (v *ClustersView) setClusters(clusters []resources.Cluster) {
	v.clusters = clusters
	v.table.SetRows(v.rows())
}

// rows merges the listed clusters with the monitor's latest health check
func (v *ClustersView) rows() []table.Row {
	health := map[string]resources.Cluster{}
	if v.env.Monitor != nil {
		for _, c := range v.env.Monitor.Status() {
			health[c.Name] = c
		}
	}
	rows := make([]table.Row, 0, len(v.clusters))
	for _, c := range v.clusters {
		if h, ok := health[c.Name]; ok {
			c.Status, c.Error = h.Status, h.Error
			if c.Version == "" {
				c.Version = h.Version
			}
		}
		def := ""
		if c.Default {
			def = "*"
		}
		status := c.Status
		if status == "" {
			status = constants.StatusUnknown
		}
		rows = append(rows, table.Row{
			ID:      c.Name,
			Cluster: c.Name,
			Cells: map[string]table.Cell{
				table.KeyName: table.Text(c.Name),
				"status":      table.Text(status),
				"version":     table.Text(c.Version),
				"default":     table.Text(def),
				"error":       table.Text(strings.TrimSpace(c.Error)),
			},
		})
	}
	return rows
}

func (v *ClustersView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case clustersLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.setClusters(msg.clusters)
		}
		return v, nil

	case cacheUpdatedMsg:
		if msg.key != clustersKey {
			return v, nil
		}
		if res, ok := v.env.Cache.Peek(clustersKey); ok {
			if clusters, ok := res.Value.([]resources.Cluster); ok {
				v.setClusters(clusters)
			}
		}
		return v, nil

	case clusterEventMsg:
		v.table.SetRows(v.rows())
		return v, nil

	case refreshMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, tea.Batch(v.fetch(), v.env.scheduleRefresh(v.id))

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Enter):
			if row, ok := v.table.Selected(); ok {
				return v, Navigate(router.ListPath(row.Name(), "", "pods"))
			}
		case key.Matches(msg, k.Refresh):
			v.env.Cache.Invalidate(clustersKey)
			return v, v.fetch()
		case key.Matches(msg, k.Aggregate):
			return v, Navigate(router.Build(router.Aggregate, map[string]string{router.ParamResource: "pods"}, nil))
		default:
			v.table.HandleKey(msg)
		}
	}
	return v, nil
}

func (v *ClustersView) View() string {
	switch {
	case v.loading:
		return renderLoading(v.env.Styles, v.spinner.View())
	case v.err != nil:
		return renderError(v.env.Styles, v.err)
	case len(v.clusters) == 0:
		return renderEmpty(v.env.Styles, "No clusters configured")
	}
	healthy := 0
	for _, r := range v.table.state.Rows() {
		if r.Text("status") != constants.StatusFailed {
			healthy++
		}
	}
	summary := v.env.Styles.GetListStyles().Muted.Render(fmt.Sprintf("%d/%d clusters reachable", healthy, len(v.clusters)))
	return lipgloss.JoinVertical(lipgloss.Left, v.table.View(), summary)
}

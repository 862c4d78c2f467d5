package ui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/pages"
	"github.com/katyella/kconsole/internal/query"
	"github.com/katyella/kconsole/internal/router"
	"github.com/katyella/kconsole/internal/table"
	"github.com/rs/zerolog/log"
)

type listLoadedMsg struct {
	viewID int64
	rows   []table.Row
	failed []string
	stale  bool
	err    error
}

// ListView is the resource table of one cluster, or of every cluster in
// aggregate mode
type ListView struct {
	env       *Env
	id        int64
	cluster   string
	namespace string
	rt        resources.ResourceType
	page      *pages.Page
	aggregate bool
	// home is the cluster to return to when leaving aggregate mode
	home string

	table     *dataTable
	search    textinput.Model
	searching bool
	filterErr error

	spinner spinner.Model
	loading bool
	loaded  bool
	stale   bool
	err     error
	failed  []string
	removed map[string]table.Row
}

// NewListView lists rt in cluster/namespace. An empty cluster means every
// cluster.
func NewListView(env *Env, cluster, namespace string, rt resources.ResourceType, home string) *ListView {
	page := pages.For(rt)
	aggregate := cluster == ""
	if aggregate || !rt.Namespaced {
		namespace = ""
	}
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter: text, =exact, /regex/, ?cel, l:selector"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &ListView{
		env:       env,
		id:        nextViewID(),
		cluster:   cluster,
		namespace: namespace,
		rt:        rt,
		page:      page,
		aggregate: aggregate,
		home:      home,
		table:     newDataTable(page.TableColumns(rt.Namespaced && namespace == "", aggregate), env.pageSize(), env.Styles, env.Keys),
		search:    ti,
		spinner:   sp,
		loading:   true,
		removed:   make(map[string]table.Row),
	}
}

// Context implements contextual
func (v *ListView) Context() (string, string) {
	if v.aggregate {
		return v.home, ""
	}
	return v.cluster, v.namespace
}

func (v *ListView) Title() string {
	switch {
	case v.aggregate:
		return fmt.Sprintf("%s · all clusters", v.rt.Name)
	case v.namespace == "" && v.rt.Namespaced:
		return fmt.Sprintf("%s · %s · %s", v.rt.Name, v.cluster, constants.AllNamespaces)
	case v.namespace == "":
		return fmt.Sprintf("%s · %s", v.rt.Name, v.cluster)
	}
	return fmt.Sprintf("%s · %s/%s", v.rt.Name, v.cluster, v.namespace)
}

func (v *ListView) Capturing() bool { return v.searching }

func (v *ListView) Bindings() []key.Binding {
	k := v.env.Keys
	b := []key.Binding{k.Enter, k.Search, k.SortNext, k.Refresh, k.Create, k.Edit, k.Delete}
	switch v.rt.Name {
	case "pods":
		b = append(b, k.Logs, k.Exec)
	case "nodes":
		b = append(b, k.Shell)
	}
	return append(b, k.Aggregate)
}

func (v *ListView) cacheKey() string {
	if v.aggregate {
		return query.Key(aggregateCluster, v.rt.Ref(), "", "")
	}
	return query.Key(v.cluster, v.rt.Ref(), v.namespace, "")
}

func (v *ListView) Init() tea.Cmd {
	return tea.Batch(v.fetch(), v.spinner.Tick, v.env.scheduleRefresh(v.id))
}

func (v *ListView) fetcher() query.Fetcher {
	env, rt, cluster, namespace := v.env, v.rt, v.cluster, v.namespace
	if v.aggregate {
		return func(ctx context.Context) (any, error) {
			clusters, err := env.Aggregator.Clusters(ctx)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(clusters))
			for _, c := range clusters {
				names = append(names, c.Name)
			}
			return env.Aggregator.List(ctx, names, rt, resources.ListOptions{})
		}
	}
	return func(ctx context.Context) (any, error) {
		return env.Backend.List(ctx, cluster, rt, resources.ListOptions{Namespace: namespace})
	}
}

func (v *ListView) fetch() tea.Cmd {
	env, key, id, fetch := v.env, v.cacheKey(), v.id, v.fetcher()
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		res, err := env.Cache.Fetch(ctx, key, fetch)
		if err != nil {
			return listLoadedMsg{viewID: id, err: err}
		}
		msg := v.toRows(res.Value)
		msg.viewID, msg.stale = id, res.Stale
		return msg
	}
}

func (v *ListView) toRows(value any) listLoadedMsg {
	now := v.env.now()
	switch val := value.(type) {
	case *resources.List:
		return listLoadedMsg{rows: v.page.Rows(v.cluster, val.Items, now)}
	case multicluster.Aggregate:
		rows := make([]table.Row, 0, len(val.Items))
		for i := range val.Items {
			rows = append(rows, v.page.Row(val.Items[i].Cluster, &val.Items[i].Object, now))
		}
		return listLoadedMsg{rows: rows, failed: val.Failed()}
	}
	return listLoadedMsg{}
}

func (v *ListView) SetSize(width, height int) {
	v.search.Width = width - 4
	v.table.SetSize(width, height-2)
}

func (v *ListView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			if v.loaded {
				// Keep the stale table and only report
				return v, ReportError("Refresh failed", msg.err)
			}
			return v, nil
		}
		v.err = nil
		v.loaded = true
		v.stale = msg.stale
		v.failed = msg.failed
		if !msg.stale {
			v.pruneRemoved(msg.rows)
		}
		v.table.SetRows(v.withoutRemoved(msg.rows))
		return v, nil

	case cacheUpdatedMsg:
		if msg.key != v.cacheKey() {
			return v, nil
		}
		if res, ok := v.env.Cache.Peek(msg.key); ok {
			loaded := v.toRows(res.Value)
			v.stale = false
			v.failed = loaded.failed
			v.pruneRemoved(loaded.rows)
			v.table.SetRows(v.withoutRemoved(loaded.rows))
		}
		return v, nil

	case refreshMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, tea.Batch(v.fetch(), v.env.scheduleRefresh(v.id))

	case optimisticRemoveMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, v.applyRemove(msg)

	case mutationDoneMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, v.mutationDone(msg)

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.searching {
			return v, v.updateSearch(msg)
		}
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *ListView) withoutRemoved(rows []table.Row) []table.Row {
	if len(v.removed) == 0 {
		return rows
	}
	kept := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		if _, gone := v.removed[r.ID]; !gone {
			kept = append(kept, r)
		}
	}
	return kept
}

// pruneRemoved forgets hidden rows that a fresh load no longer returns.
// Until then the stale list still holds them and they stay hidden.
func (v *ListView) pruneRemoved(rows []table.Row) {
	if len(v.removed) == 0 {
		return
	}
	present := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		present[r.ID] = struct{}{}
	}
	for id := range v.removed {
		if _, ok := present[id]; !ok {
			delete(v.removed, id)
		}
	}
}

func (v *ListView) mutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.action == "Delete" && msg.err != nil {
		for id, row := range v.removed {
			if row.Cluster != msg.ref.Cluster || row.Name() != msg.ref.Name || row.Namespace() != msg.ref.Namespace {
				continue
			}
			delete(v.removed, id)
			rows := append(slices.Clone(v.table.state.Rows()), row)
			v.table.SetRows(rows)
		}
	}
	if msg.err != nil {
		return ReportError(msg.title(), msg.err)
	}
	return tea.Batch(Notify(format.LevelSuccess, msg.title(), msg.message()), v.fetch())
}

func (v *ListView) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.searching = false
		v.search.Blur()
		v.search.SetValue("")
		v.filterErr = nil
		_ = v.table.SetFilter("")
		return nil
	case "enter":
		v.searching = false
		v.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.filterErr = v.table.SetFilter(v.search.Value())
	return cmd
}

func (v *ListView) selectedRef() (resources.Ref, table.Row, bool) {
	row, ok := v.table.Selected()
	if !ok || row.Object == nil {
		return resources.Ref{}, table.Row{}, false
	}
	return resources.RefFor(row.Cluster, v.rt, row.Object), row, true
}

func (v *ListView) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Search):
		v.searching = true
		return v.search.Focus()

	case key.Matches(msg, k.Refresh):
		v.env.Cache.Invalidate(v.cacheKey())
		return v.fetch()

	case key.Matches(msg, k.Enter):
		if ref, _, ok := v.selectedRef(); ok {
			return Navigate(router.DetailPath(ref.Cluster, ref.Namespace, v.rt.Ref(), ref.Name))
		}

	case key.Matches(msg, k.Delete):
		ref, row, ok := v.selectedRef()
		if !ok {
			return nil
		}
		return OpenModal(NewConfirmModal(v.env.Styles,
			"Delete "+v.rt.Singular,
			fmt.Sprintf("Delete %s %q from %s?", v.rt.Singular, ref.Name, ref.Cluster),
			v.optimisticDelete(ref, row)))

	case key.Matches(msg, k.Edit):
		ref, row, ok := v.selectedRef()
		if !ok {
			return nil
		}
		m, err := v.env.editModal(v.id, ref, row.Object)
		if err != nil {
			return ReportError("Cannot edit", err)
		}
		return OpenModal(m)

	case key.Matches(msg, k.Create):
		cluster := v.cluster
		if cluster == "" {
			cluster = v.home
		}
		return OpenModal(v.env.createModal(v.id, cluster, v.namespace, v.rt))

	case key.Matches(msg, k.Logs) && v.rt.Name == "pods":
		if ref, _, ok := v.selectedRef(); ok {
			return Navigate(router.Build(router.Logs, map[string]string{
				router.ParamCluster: ref.Cluster, router.ParamNamespace: ref.Namespace, router.ParamName: ref.Name,
			}, nil))
		}

	case key.Matches(msg, k.Exec) && v.rt.Name == "pods":
		if ref, _, ok := v.selectedRef(); ok {
			return Navigate(router.Build(router.Exec, map[string]string{
				router.ParamCluster: ref.Cluster, router.ParamNamespace: ref.Namespace, router.ParamName: ref.Name,
			}, nil))
		}

	case key.Matches(msg, k.Shell) && v.rt.Name == "nodes":
		if ref, _, ok := v.selectedRef(); ok {
			return Navigate(router.Build(router.NodeShell, map[string]string{
				router.ParamCluster: ref.Cluster, router.ParamName: ref.Name,
			}, nil))
		}

	case key.Matches(msg, k.Namespace) && v.rt.Namespaced && !v.aggregate:
		return OpenModal(NewInputModal(v.env.Styles, "Namespace", "empty for all namespaces", v.namespace, nil,
			func(ns string) tea.Cmd {
				return Navigate(router.ListPath(v.cluster, ns, v.rt.Ref()))
			}))

	case key.Matches(msg, k.Cluster):
		return OpenModal(NewInputModal(v.env.Styles, "Cluster", "cluster name", v.cluster, requireValue,
			func(cluster string) tea.Cmd {
				return Navigate(router.ListPath(cluster, v.namespace, v.rt.Ref()))
			}))

	case key.Matches(msg, k.Aggregate):
		if v.aggregate {
			if v.home == "" {
				return Navigate(router.Build(router.Clusters, nil, nil))
			}
			return Navigate(router.ListPath(v.home, "", v.rt.Ref()))
		}
		return Navigate(router.Build(router.Aggregate, map[string]string{router.ParamResource: v.rt.Ref()}, nil))

	default:
		v.table.HandleKey(msg)
	}
	return nil
}

// optimisticDelete hides the row at once and issues the delete. A failed
// delete puts the row back.
func (v *ListView) optimisticDelete(ref resources.Ref, row table.Row) tea.Cmd {
	return func() tea.Msg {
		return optimisticRemoveMsg{viewID: v.id, ref: ref, row: row}
	}
}

type optimisticRemoveMsg struct {
	viewID int64
	ref    resources.Ref
	row    table.Row
}

// applyRemove runs on the update loop, never inside a command goroutine
func (v *ListView) applyRemove(msg optimisticRemoveMsg) tea.Cmd {
	v.removed[msg.row.ID] = msg.row
	v.table.SetRows(v.withoutRemoved(v.table.state.Rows()))
	log.Debug().Str("ref", msg.ref.String()).Msg("Optimistic delete")
	return v.env.deleteCmd(v.id, msg.ref)
}

func requireValue(s string) error {
	if s == "" {
		return fmt.Errorf("a value is required")
	}
	return nil
}

func (v *ListView) View() string {
	sm := v.env.Styles
	var body string
	switch {
	case v.loading && !v.loaded:
		body = renderLoading(sm, v.spinner.View())
	case v.err != nil && !v.loaded:
		body = renderError(sm, v.err)
	case v.loaded && len(v.table.state.Rows()) == 0:
		body = renderEmpty(sm, "")
	default:
		body = v.table.View()
	}

	var lines []string
	if v.searching || v.search.Value() != "" {
		lines = append(lines, v.search.View())
	}
	if v.filterErr != nil {
		lines = append(lines, sm.GetDialogStyles().Error.Render(v.filterErr.Error()))
	}
	if len(v.failed) > 0 {
		lines = append(lines, sm.GetDialogStyles().Error.Render(fmt.Sprintf("unreachable clusters: %v", v.failed)))
	}
	if v.stale {
		lines = append(lines, sm.GetListStyles().Muted.Render("refreshing…"))
	}
	lines = append(lines, body)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/router"
	"github.com/katyella/kconsole/internal/table"
)

type searchDoneMsg struct {
	viewID  int64
	query   string
	results []resources.SearchResult
	err     error
}

var searchColumns = []table.Column{
	{Key: table.KeyName, Title: "NAME", Width: 32, Sortable: true},
	{Key: "kind", Title: "KIND", Width: 18, Sortable: true},
	{Key: table.KeyNamespace, Title: "NAMESPACE", Width: 16, Sortable: true},
	{Key: table.KeyCluster, Title: "CLUSTER", Width: 14, Sortable: true},
}

// SearchView runs a global search across clusters
type SearchView struct {
	env     *Env
	id      int64
	cluster string
	input   textinput.Model
	table   *dataTable
	query   string
	running bool
	err     error
	results []resources.SearchResult
}

// NewSearchView starts with query. A non-empty query runs immediately.
func NewSearchView(env *Env, query, cluster string) *SearchView {
	ti := textinput.New()
	ti.Prompt = "search: "
	ti.Placeholder = "name or label"
	ti.SetValue(query)
	if query == "" {
		ti.Focus()
	}
	return &SearchView{
		env:     env,
		id:      nextViewID(),
		cluster: cluster,
		input:   ti,
		table:   newDataTable(searchColumns, env.pageSize(), env.Styles, env.Keys),
	}
}

func (v *SearchView) Title() string {
	if v.cluster != "" {
		return "search · " + v.cluster
	}
	return "search"
}

func (v *SearchView) Capturing() bool { return v.input.Focused() }

func (v *SearchView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Search, k.Enter, k.SortNext}
}

func (v *SearchView) Init() tea.Cmd {
	if v.input.Value() != "" {
		return v.run(v.input.Value())
	}
	return textinput.Blink
}

func (v *SearchView) run(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	v.query, v.running, v.err = query, true, nil
	env, id, q := v.env, v.id, resources.SearchQuery{Query: query, Cluster: v.cluster, Limit: constants.DefaultSearchLimit}
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		results, err := env.Backend.Search(ctx, q)
		return searchDoneMsg{viewID: id, query: q.Query, results: results, err: err}
	}
}

func (v *SearchView) SetSize(width, height int) {
	v.input.Width = width - len(v.input.Prompt) - 2
	v.table.SetSize(width, height-2)
}

func (v *SearchView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		if msg.viewID != v.id || msg.query != v.query {
			return v, nil
		}
		v.running = false
		v.err = msg.err
		v.results = msg.results
		v.table.SetRows(searchRows(msg.results))
		return v, nil

	case tea.KeyMsg:
		if v.input.Focused() {
			switch msg.String() {
			case "enter":
				v.input.Blur()
				return v, v.run(v.input.Value())
			case "esc":
				v.input.Blur()
				return v, nil
			}
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Search):
			return v, v.input.Focus()
		case key.Matches(msg, k.Enter):
			row, ok := v.table.Selected()
			if !ok {
				return v, nil
			}
			return v, Navigate(router.DetailPath(row.Cluster, row.Text(table.KeyNamespace), row.Text("resource"), row.Text(table.KeyName)))
		default:
			v.table.HandleKey(msg)
		}
	}
	return v, nil
}

func searchRows(results []resources.SearchResult) []table.Row {
	rows := make([]table.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, table.Row{
			ID:      strings.Join([]string{r.Cluster, r.Resource, r.Namespace, r.Name}, "/"),
			Cluster: r.Cluster,
			Cells: map[string]table.Cell{
				table.KeyName:      table.Text(r.Name),
				table.KeyNamespace: table.Text(r.Namespace),
				table.KeyCluster:   table.Text(r.Cluster),
				"kind":             table.Text(r.Kind),
				"resource":         table.Text(r.Resource),
			},
		})
	}
	return rows
}

func (v *SearchView) View() string {
	sm := v.env.Styles
	var body string
	switch {
	case v.running:
		body = renderLoading(sm, "")
	case v.err != nil:
		body = renderError(sm, v.err)
	case v.query == "":
		body = renderEmpty(sm, "Type a query and press enter")
	case len(v.results) == 0:
		body = renderEmpty(sm, "No matches for "+v.query)
	default:
		body = v.table.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.input.View(), "", body)
}

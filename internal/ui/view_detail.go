package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/pages"
	"github.com/katyella/kconsole/internal/query"
	"github.com/katyella/kconsole/internal/router"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

type detailTab int

const (
	tabOverview detailTab = iota
	tabYAML
	tabEvents
)

var detailTabs = []string{"Overview", "YAML", "Events"}

type detailLoadedMsg struct {
	viewID int64
	obj    *unstructured.Unstructured
	err    error
}

type eventsLoadedMsg struct {
	viewID int64
	events []corev1.Event
	err    error
}

// DetailView shows one object: overview fields, YAML and related events
type DetailView struct {
	env  *Env
	id   int64
	ref  resources.Ref
	page *pages.Page

	obj     *unstructured.Unstructured
	events  []corev1.Event
	eventsE error
	err     error
	loading bool

	tab      detailTab
	reveal   bool
	viewport viewport.Model
	spinner  spinner.Model

	// prevReplicas holds the replica count before an optimistic scale
	prevReplicas *int64
}

// NewDetailView opens ref
func NewDetailView(env *Env, ref resources.Ref) *DetailView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &DetailView{
		env:      env,
		id:       nextViewID(),
		ref:      ref,
		page:     pages.For(ref.Type),
		loading:  true,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

func (v *DetailView) Context() (string, string) { return v.ref.Cluster, v.ref.Namespace }

func (v *DetailView) Title() string {
	if v.ref.Namespace == "" {
		return fmt.Sprintf("%s/%s · %s", v.ref.Type.Singular, v.ref.Name, v.ref.Cluster)
	}
	return fmt.Sprintf("%s/%s · %s/%s", v.ref.Type.Singular, v.ref.Name, v.ref.Cluster, v.ref.Namespace)
}

func (v *DetailView) Capturing() bool { return false }

func (v *DetailView) Bindings() []key.Binding {
	k := v.env.Keys
	b := []key.Binding{k.NextTab, k.Refresh, k.Edit, k.Delete}
	rt := v.ref.Type
	switch {
	case rt.HasLogs():
		b = append(b, k.Logs, k.Exec)
	case rt.Name == "nodes":
		b = append(b, k.Cordon, k.Shell)
	case rt.Name == "secrets":
		b = append(b, k.Reveal)
	}
	if rt.Scalable() {
		b = append(b, k.Scale)
	}
	if rt.Restartable() {
		b = append(b, k.Restart)
	}
	return b
}

func (v *DetailView) cacheKey() string {
	return query.Key(v.ref.Cluster, v.ref.Type.Ref(), v.ref.Namespace, "get="+v.ref.Name)
}

func (v *DetailView) eventsKey() string {
	return query.Key(v.ref.Cluster, "events", v.ref.Namespace, "for="+v.ref.Type.Ref()+"/"+v.ref.Name)
}

func (v *DetailView) Init() tea.Cmd {
	return tea.Batch(v.fetch(), v.fetchEvents(), v.spinner.Tick, v.env.scheduleRefresh(v.id))
}

func (v *DetailView) fetch() tea.Cmd {
	env, ref, key, id := v.env, v.ref, v.cacheKey(), v.id
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		res, err := env.Cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
			return env.Backend.Get(ctx, ref)
		})
		if err != nil {
			return detailLoadedMsg{viewID: id, err: err}
		}
		return detailLoadedMsg{viewID: id, obj: res.Value.(*unstructured.Unstructured)}
	}
}

// fetchEvents lists the events of the object. The field selector narrows by
// name and the kind is checked here since names repeat across kinds.
func (v *DetailView) fetchEvents() tea.Cmd {
	env, ref, key, id := v.env, v.ref, v.eventsKey(), v.id
	eventsType, ok := resources.Lookup("events")
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		res, err := env.Cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
			return env.Backend.List(ctx, ref.Cluster, eventsType, resources.ListOptions{
				Namespace:     ref.Namespace,
				FieldSelector: "involvedObject.name=" + ref.Name,
			})
		})
		if err != nil {
			return eventsLoadedMsg{viewID: id, err: err}
		}
		return eventsLoadedMsg{viewID: id, events: relatedEvents(res.Value.(*resources.List), ref)}
	}
}

func relatedEvents(list *resources.List, ref resources.Ref) []corev1.Event {
	var out []corev1.Event
	for i := range list.Items {
		var ev corev1.Event
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(list.Items[i].Object, &ev); err != nil {
			continue
		}
		io := ev.InvolvedObject
		if io.Name != ref.Name || (ref.Type.Kind != "" && io.Kind != ref.Type.Kind) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (v *DetailView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-2, 1)
	v.render()
}

func (v *DetailView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			if v.obj != nil {
				return v, ReportError("Refresh failed", msg.err)
			}
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.setObject(msg.obj)
		return v, nil

	case eventsLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.events, v.eventsE = msg.events, msg.err
		v.render()
		return v, nil

	case cacheUpdatedMsg:
		switch msg.key {
		case v.cacheKey():
			if res, ok := v.env.Cache.Peek(msg.key); ok {
				if obj, ok := res.Value.(*unstructured.Unstructured); ok {
					v.setObject(obj)
				}
			}
		case v.eventsKey():
			if res, ok := v.env.Cache.Peek(msg.key); ok {
				if list, ok := res.Value.(*resources.List); ok {
					v.events = relatedEvents(list, v.ref)
					v.render()
				}
			}
		}
		return v, nil

	case refreshMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, tea.Batch(v.fetch(), v.fetchEvents(), v.env.scheduleRefresh(v.id))

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
		if cmd, handled := v.handleKey(msg); handled {
			return v, cmd
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *DetailView) setObject(obj *unstructured.Unstructured) {
	v.obj = obj
	v.render()
}

func (v *DetailView) mutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		if msg.action == "Scale" && v.prevReplicas != nil && v.obj != nil {
			obj := v.obj.DeepCopy()
			_ = unstructured.SetNestedField(obj.Object, *v.prevReplicas, "spec", "replicas")
			v.setObject(obj)
		}
		v.prevReplicas = nil
		return ReportError(msg.title(), msg.err)
	}
	v.prevReplicas = nil
	notify := Notify(format.LevelSuccess, msg.title(), msg.message())
	if msg.action == "Delete" {
		return tea.Batch(notify, Back())
	}
	if msg.obj != nil {
		v.setObject(msg.obj)
	}
	v.env.Cache.Invalidate(v.cacheKey())
	return tea.Batch(notify, v.fetch())
}

func (v *DetailView) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := v.env.Keys
	rt := v.ref.Type
	switch {
	case key.Matches(msg, k.NextTab):
		v.tab = (v.tab + 1) % detailTab(len(detailTabs))
	case key.Matches(msg, k.PrevTab):
		v.tab = (v.tab + detailTab(len(detailTabs)) - 1) % detailTab(len(detailTabs))
	case key.Matches(msg, k.Refresh):
		v.env.Cache.Invalidate(v.cacheKey())
		v.env.Cache.Invalidate(v.eventsKey())
		return tea.Batch(v.fetch(), v.fetchEvents()), true
	case v.obj == nil:
		return nil, false

	case key.Matches(msg, k.Edit):
		m, err := v.env.editModal(v.id, v.ref, v.obj)
		if err != nil {
			return ReportError("Cannot edit", err), true
		}
		return OpenModal(m), true

	case key.Matches(msg, k.Delete):
		return OpenModal(NewConfirmModal(v.env.Styles, "Delete "+rt.Singular,
			fmt.Sprintf("Delete %s %q from %s?", rt.Singular, v.ref.Name, v.ref.Cluster),
			v.env.deleteCmd(v.id, v.ref))), true

	case key.Matches(msg, k.Logs) && rt.HasLogs():
		return Navigate(router.Build(router.Logs, v.routeParams(), nil)), true

	case key.Matches(msg, k.Exec) && rt.HasLogs():
		return Navigate(router.Build(router.Exec, v.routeParams(), nil)), true

	case key.Matches(msg, k.Shell) && rt.Name == "nodes":
		return Navigate(router.Build(router.NodeShell, v.routeParams(), nil)), true

	case key.Matches(msg, k.Reveal) && rt.Name == "secrets":
		v.reveal = !v.reveal

	case key.Matches(msg, k.Scale) && rt.Scalable():
		current, _, _ := unstructured.NestedInt64(v.obj.Object, "spec", "replicas")
		return OpenModal(NewInputModal(v.env.Styles, "Scale "+v.ref.Name, "replicas",
			strconv.FormatInt(current, 10), validateReplicas, v.scale)), true

	case key.Matches(msg, k.Restart) && rt.Restartable():
		return OpenModal(NewConfirmModal(v.env.Styles, "Restart "+rt.Singular,
			fmt.Sprintf("Roll out a restart of %s?", v.ref.Name),
			v.env.restartCmd(v.id, v.ref))), true

	case key.Matches(msg, k.Cordon) && rt.Name == "nodes":
		cordoned, _, _ := unstructured.NestedBool(v.obj.Object, "spec", "unschedulable")
		verb := "Cordon"
		if cordoned {
			verb = "Uncordon"
		}
		return OpenModal(NewConfirmModal(v.env.Styles, verb+" node",
			fmt.Sprintf("%s node %s?", verb, v.ref.Name),
			v.env.cordonCmd(v.id, v.ref, !cordoned))), true

	default:
		return nil, false
	}
	v.render()
	return nil, true
}

func (v *DetailView) routeParams() map[string]string {
	return map[string]string{
		router.ParamCluster:   v.ref.Cluster,
		router.ParamNamespace: v.ref.Namespace,
		router.ParamName:      v.ref.Name,
	}
}

func validateReplicas(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("replicas must be a non-negative integer")
	}
	return nil
}

// scale applies the new replica count locally before the request returns
func (v *DetailView) scale(value string) tea.Cmd {
	n, _ := strconv.Atoi(strings.TrimSpace(value))
	prev, _, _ := unstructured.NestedInt64(v.obj.Object, "spec", "replicas")
	v.prevReplicas = &prev
	obj := v.obj.DeepCopy()
	_ = unstructured.SetNestedField(obj.Object, int64(n), "spec", "replicas")
	v.setObject(obj)
	return v.env.scaleCmd(v.id, v.ref, int32(n))
}

func (v *DetailView) render() {
	if v.obj == nil {
		return
	}
	var content string
	switch v.tab {
	case tabOverview:
		content = v.renderOverview()
	case tabYAML:
		text, err := pages.ToYAML(v.obj, v.reveal)
		if err != nil {
			content = renderError(v.env.Styles, err)
		} else {
			content = text
		}
	case tabEvents:
		content = v.renderEvents()
	}
	v.viewport.SetContent(content)
}

func (v *DetailView) renderOverview() string {
	fields := v.page.Overview(v.obj, v.env.now())
	if v.ref.Type.Name == "secrets" {
		for _, e := range pages.SecretEntries(v.obj, v.reveal) {
			fields = append(fields, pages.Field{Section: "Values", Label: e.Key, Value: e.Value})
		}
	}
	ls := v.env.Styles.GetListStyles()
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.Label))
	}

	var b strings.Builder
	section := ""
	for _, f := range fields {
		if f.Section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = f.Section
			b.WriteString(ls.Category.Render(section) + "\n")
		}
		label := ls.Muted.Render(fmt.Sprintf("  %-*s", labelWidth, f.Label))
		value := f.Value
		if f.Label == "Status" || f.Label == "Phase" {
			value = v.env.Styles.Status(value)
		}
		b.WriteString(label + "  " + value + "\n")
	}
	return b.String()
}

func (v *DetailView) renderEvents() string {
	if v.eventsE != nil {
		return renderError(v.env.Styles, v.eventsE)
	}
	if len(v.events) == 0 {
		return renderEmpty(v.env.Styles, "No events")
	}
	ls := v.env.Styles.GetListStyles()
	now := v.env.now()
	var b strings.Builder
	for _, ev := range v.events {
		last := ev.LastTimestamp.Time
		if last.IsZero() {
			last = ev.EventTime.Time
		}
		count := ev.Count
		if count == 0 {
			count = 1
		}
		typ := ev.Type
		if typ == corev1.EventTypeWarning {
			typ = v.env.Styles.Status("Warning")
		}
		fmt.Fprintf(&b, "%s %s %s x%d\n  %s\n",
			ls.Muted.Render(format.FormatAge(last, now)), typ, ls.Category.Render(ev.Reason), count, strings.TrimSpace(ev.Message))
	}
	return b.String()
}

func (v *DetailView) renderTabs() string {
	ts := v.env.Styles.GetTabStyles()
	parts := make([]string, 0, len(detailTabs))
	for i, name := range detailTabs {
		if detailTab(i) == v.tab {
			parts = append(parts, ts.ActiveTab.Render(name))
		} else {
			parts = append(parts, ts.InactiveTab.Render(name))
		}
	}
	tabs := strings.Join(parts, ts.TabSeparator.Render("│"))
	if v.ref.Type.Name == "secrets" {
		state := "masked"
		if v.reveal {
			state = "revealed"
		}
		tabs += ts.TabSeparator.Render("  values " + state)
	}
	return tabs
}

func (v *DetailView) View() string {
	switch {
	case v.obj == nil && v.err != nil:
		return renderError(v.env.Styles, v.err)
	case v.obj == nil:
		return renderLoading(v.env.Styles, v.spinner.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.renderTabs(), "", v.viewport.View())
}

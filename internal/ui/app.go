package ui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/router"
	"github.com/katyella/kconsole/internal/ui/commands"
	uierrors "github.com/katyella/kconsole/internal/ui/errors"
	"github.com/rs/zerolog/log"
)

// App is the root model: header, sidebar, the routed view, status bar and
// the modal, help and toast overlays
type App struct {
	env     *Env
	history *router.History
	start   string

	view     View
	route    router.Match
	modal    Modal
	notifier *Notifier
	help     help.Model
	showHelp bool

	// cluster and namespace follow the last contextual view
	cluster   string
	namespace string
	resource  string
	// backendDown is set when the monitor cannot reach the backend
	backendDown bool

	width  int
	height int
}

// NewApp opens startPath once the program starts. An empty path opens
// the cluster list.
func NewApp(env *Env, startPath, cluster string) *App {
	if startPath == "" {
		startPath = "/"
	}
	h := help.New()
	h.ShowAll = true
	return &App{
		env:      env,
		history:  router.NewHistory(constants.MaxHistoryEntries),
		start:    startPath,
		notifier: NewNotifier(constants.ToastDuration, constants.MaxVisibleToasts),
		help:     h,
		cluster:  cluster,
		resource: "pods",
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.open(a.start, true), tick())
}

// Path is the current route path
func (a *App) Path() string { return a.history.Current() }

// open builds the view for path and makes it current
func (a *App) open(path string, push bool) tea.Cmd {
	m, ok := router.Resolve(path)
	if !ok {
		return Notify(format.LevelWarning, "Unknown route", path)
	}
	view, err := a.viewFor(m)
	if err != nil {
		return ReportError("Cannot open "+path, err)
	}
	if c, ok := a.view.(closer); ok {
		c.Close()
	}
	a.view, a.route, a.modal = view, m, nil
	if push {
		a.history.Push(path)
	}
	if c, ok := view.(contextual); ok {
		if cluster, ns := c.Context(); cluster != "" {
			a.cluster, a.namespace = cluster, ns
		}
	}
	if rt, ok := m.Resource(); ok {
		a.resource = rt.Ref()
	}
	log.Debug().Str("path", path).Str("route", m.Route).Msg("Navigate")
	a.layout()
	return view.Init()
}

func (a *App) viewFor(m router.Match) (View, error) {
	cluster, ns, name := m.Param(router.ParamCluster), m.Param(router.ParamNamespace), m.Param(router.ParamName)
	switch m.Route {
	case router.Home, router.Clusters:
		return NewClustersView(a.env), nil
	case router.List, router.ListNS:
		rt, _ := m.Resource()
		return NewListView(a.env, cluster, ns, rt, cluster), nil
	case router.Aggregate:
		rt, _ := m.Resource()
		return NewListView(a.env, "", "", rt, a.cluster), nil
	case router.Detail, router.DetailNS:
		rt, _ := m.Resource()
		return NewDetailView(a.env, resources.Ref{Cluster: cluster, Type: rt, Namespace: ns, Name: name}), nil
	case router.Logs:
		return NewLogView(a.env, podRef(cluster, ns, name), m.Query.Get("container")), nil
	case router.Exec:
		return NewExecView(a.env, podRef(cluster, ns, name), m.Query.Get("container")), nil
	case router.NodeShell:
		return NewNodeShellView(a.env, cluster, name), nil
	case router.Search:
		return NewSearchView(a.env, m.Query.Get("q"), m.Query.Get("cluster")), nil
	case router.Users:
		return NewUsersView(a.env), nil
	case router.Groups:
		return NewGroupsView(a.env), nil
	case router.Audit:
		return NewAuditView(a.env), nil
	}
	return nil, fmt.Errorf("no view for route %s", m.Route)
}

func podRef(cluster, namespace, name string) resources.Ref {
	return resources.Ref{Cluster: cluster, Type: resources.MustLookup("pods"), Namespace: namespace, Name: name}
}

func (a *App) sidebarVisible() bool {
	return a.width >= constants.MinTerminalWidth+constants.SidebarWidth
}

// layout sizes the view to the space between the header and status bar
func (a *App) layout() {
	if a.view == nil || a.width == 0 {
		return
	}
	w := a.width
	if a.sidebarVisible() {
		w -= constants.SidebarWidth + 1
	}
	a.view.SetSize(w, a.bodyHeight())
	if a.modal != nil {
		a.modal.SetSize(a.width, a.bodyHeight())
	}
	a.help.Width = a.width
}

func (a *App) bodyHeight() int {
	return max(a.height-constants.HeaderHeight-constants.StatusBarHeight, 1)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.layout()
		return a, a.forward(msg)

	case navigateMsg:
		return a, a.open(msg.path, true)

	case backMsg:
		if path, ok := a.history.Back(); ok {
			return a, a.open(path, false)
		}
		return a, nil

	case toastMsg:
		a.notifier.Push(msg.level, msg.title, msg.message, a.env.now())
		return a, nil

	case errMsg:
		friendly := uierrors.MapError(msg.err)
		log.Warn().Err(msg.err).Str("title", msg.title).Msg("Operation failed")
		title := msg.title
		if title == "" {
			title = friendly.Title
		}
		a.notifier.Push(friendly.Severity.Level(), title, friendly.Message, a.env.now())
		return a, nil

	case openModalMsg:
		a.modal = msg.modal
		a.layout()
		return a, nil

	case setThemeMsg:
		return a, a.setTheme(msg.name)

	case tickMsg:
		now := a.env.now()
		a.notifier.Prune(now)
		if n := a.env.Cache.Sweep(now); n > 0 {
			log.Debug().Int("evicted", n).Msg("Cache sweep")
		}
		return a, tick()

	case clusterEventMsg:
		a.clusterEvent(msg.event)
		return a, a.forward(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.MouseMsg:
		return a, a.handleMouse(msg)
	}
	return a, a.forward(msg)
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	if a.view == nil {
		return nil
	}
	var cmd tea.Cmd
	a.view, cmd = a.view.Update(msg)
	return cmd
}

func (a *App) clusterEvent(e multicluster.Event) {
	level := format.LevelInfo
	switch e.Type {
	case multicluster.EventConnected:
		level = format.LevelSuccess
		if e.Cluster == "" {
			a.backendDown = false
		}
	case multicluster.EventDisconnected, multicluster.EventError:
		level = format.LevelError
		if e.Cluster == "" {
			a.backendDown = true
		}
	}
	title := e.Type.String()
	if e.Cluster != "" {
		title = e.Cluster + " " + strings.ToLower(title)
	}
	a.notifier.Push(level, title, e.Message, a.env.now())
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if a.modal != nil {
		var cmd tea.Cmd
		a.modal, cmd = a.modal.Update(msg)
		return cmd
	}
	if a.showHelp {
		a.showHelp = false
		return nil
	}
	if a.view != nil && a.view.Capturing() {
		return a.forward(msg)
	}

	k := a.env.Keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.Help):
		a.showHelp = true
		return nil
	case key.Matches(msg, k.Back):
		return Back()
	case key.Matches(msg, k.Theme):
		return a.setTheme("")
	case key.Matches(msg, k.Command):
		return OpenModal(NewInputModal(a.env.Styles, "Command", "pods, ns <name>, ctx <cluster>, all <res>, /path", "", nil,
			func(line string) tea.Cmd {
				cmd, err := commands.ParseCommand(line)
				if err != nil {
					return ReportError("Command", err)
				}
				return a.run(cmd)
			}))
	}
	return a.forward(msg)
}

func (a *App) setTheme(name string) tea.Cmd {
	var err error
	if name == "" {
		err = a.env.Styles.ToggleTheme()
	} else {
		err = a.env.Styles.SetTheme(name)
	}
	if err != nil {
		return ReportError("Theme", err)
	}
	return Notify(format.LevelInfo, "Theme", a.env.Styles.GetTheme().Name)
}

// run executes a palette command
func (a *App) run(cmd *commands.Command) tea.Cmd {
	needCluster := func(path func(cluster string) string) tea.Cmd {
		if a.cluster == "" {
			return tea.Batch(
				Notify(format.LevelWarning, "No cluster selected", "pick a cluster first"),
				Navigate(router.Build(router.Clusters, nil, nil)),
			)
		}
		return Navigate(path(a.cluster))
	}
	podParams := func(cluster string) map[string]string {
		ns := a.namespace
		if ns == "" {
			ns = constants.DefaultNamespace
		}
		return map[string]string{router.ParamCluster: cluster, router.ParamNamespace: ns, router.ParamName: cmd.Name}
	}

	switch cmd.Type {
	case commands.CommandTypeQuit:
		return tea.Quit
	case commands.CommandTypeHelp:
		a.showHelp = true
	case commands.CommandTypeNamespace:
		return needCluster(func(c string) string { return router.ListPath(c, cmd.Name, a.resource) })
	case commands.CommandTypeCluster:
		return Navigate(router.ListPath(cmd.Name, "", a.resource))
	case commands.CommandTypeRefresh:
		a.env.Cache.Invalidate("")
		return a.open(a.history.Current(), false)
	case commands.CommandTypeTheme:
		return a.setTheme(cmd.Name)
	case commands.CommandTypeGo:
		return Navigate(cmd.Name)
	case commands.CommandTypeResource:
		rt := cmd.Resource.Ref()
		return needCluster(func(c string) string {
			ns := a.namespace
			if !cmd.Resource.Namespaced {
				ns = ""
			}
			if cmd.Name != "" {
				if ns == "" && cmd.Resource.Namespaced {
					ns = constants.DefaultNamespace
				}
				return router.DetailPath(c, ns, rt, cmd.Name)
			}
			return router.ListPath(c, ns, rt)
		})
	case commands.CommandTypeAggregate:
		return Navigate(router.Build(router.Aggregate, map[string]string{router.ParamResource: cmd.Resource.Ref()}, nil))
	case commands.CommandTypeSearch:
		return Navigate(router.Build(router.Search, nil, url.Values{"q": {cmd.Name}}))
	case commands.CommandTypeClusters:
		return Navigate(router.Build(router.Clusters, nil, nil))
	case commands.CommandTypeUsers:
		return Navigate(router.Build(router.Users, nil, nil))
	case commands.CommandTypeGroups:
		return Navigate(router.Build(router.Groups, nil, nil))
	case commands.CommandTypeAudit:
		return Navigate(router.Build(router.Audit, nil, nil))
	case commands.CommandTypeLogs:
		return needCluster(func(c string) string { return router.Build(router.Logs, podParams(c), nil) })
	case commands.CommandTypeExec:
		return needCluster(func(c string) string { return router.Build(router.Exec, podParams(c), nil) })
	}
	return nil
}

func (a *App) View() string {
	if a.width == 0 {
		return constants.InitializingMessage
	}
	if a.width < constants.MinTerminalWidth || a.height < constants.MinTerminalHeight {
		return fmt.Sprintf("Terminal too small: %dx%d, need %dx%d",
			a.width, a.height, constants.MinTerminalWidth, constants.MinTerminalHeight)
	}

	var body string
	switch {
	case a.modal != nil:
		body = lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, a.modal.View())
	case a.showHelp:
		help := a.env.Styles.GetDialogStyles().Container.Render(a.help.FullHelpView(a.env.Keys.FullHelp()))
		body = lipgloss.Place(a.width, a.bodyHeight(), lipgloss.Center, lipgloss.Center, help)
	default:
		body = a.renderBody()
	}
	if toasts := renderToasts(a.env.Styles, a.notifier.Visible(a.env.now())); toasts != "" {
		body = overlayTopRight(body, toasts, a.width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderStatusBar())
}

func (a *App) renderBody() string {
	main := ""
	if a.view != nil {
		main = a.view.View()
	}
	main = lipgloss.NewStyle().Height(a.bodyHeight()).MaxHeight(a.bodyHeight()).Render(main)
	if !a.sidebarVisible() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), " ", main)
}

func (a *App) renderHeader() string {
	hs := a.env.Styles.GetHeaderStyles()
	title := ""
	if a.view != nil {
		title = a.view.Title()
	}
	parts := []string{hs.Title.Render("kconsole"), title}
	if a.cluster != "" {
		ctx := hs.Cluster.Render(a.cluster)
		ns := a.namespace
		if ns == "" {
			ns = constants.AllNamespaces
		}
		parts = append(parts, ctx+hs.Muted.Render("/")+hs.Namespace.Render(ns))
	}
	status := hs.Connected.Render("● " + a.env.Backend.Name())
	if a.backendDown || (a.cluster != "" && a.env.Monitor != nil && len(a.env.Monitor.Status()) > 0 && !a.env.Monitor.IsHealthy(a.cluster)) {
		status = hs.Disconnected.Render("● disconnected")
	}
	left := strings.Join(parts, hs.Muted.Render(" │ "))
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(status), 1)
	line := left + strings.Repeat(" ", gap) + status
	return lipgloss.NewStyle().Height(constants.HeaderHeight).MaxHeight(constants.HeaderHeight).Render(ansi.Truncate(line, a.width, "…"))
}

func (a *App) renderStatusBar() string {
	sb := a.env.Styles.GetStatusBarStyles()
	var bindings []key.Binding
	if a.view != nil {
		bindings = a.view.Bindings()
	}
	bindings = append(bindings, a.env.Keys.ShortHelp()...)
	line := a.help.ShortHelpView(bindings)
	return sb.Container.Width(a.width).MaxHeight(constants.StatusBarHeight).Render(ansi.Truncate(line, a.width, "…"))
}

// sidebarEntry is one sidebar line; category headings have no type
type sidebarEntry struct {
	label string
	rt    *resources.ResourceType
}

func (e sidebarEntry) heading() bool { return e.rt == nil }

func sidebarEntries() []sidebarEntry {
	groups := resources.ByCategory()
	var entries []sidebarEntry
	for _, cat := range resources.Categories {
		types := groups[cat]
		if len(types) == 0 {
			continue
		}
		entries = append(entries, sidebarEntry{label: string(cat)})
		for i := range types {
			entries = append(entries, sidebarEntry{label: types[i].Name, rt: &types[i]})
		}
	}
	return entries
}

// renderSidebar lists resource types by category, marking the current one
func (a *App) renderSidebar() string {
	ls := a.env.Styles.GetListStyles()
	var lines []string
	for _, e := range sidebarEntries() {
		if e.heading() {
			lines = append(lines, ls.Category.Render(e.label))
			continue
		}
		name := " " + format.Truncate(e.label, constants.SidebarWidth-2)
		if e.rt.Ref() == a.resource {
			lines = append(lines, ls.SelectedItem.Render(name))
		} else {
			lines = append(lines, ls.Item.Render(name))
		}
	}
	return lipgloss.NewStyle().
		Width(constants.SidebarWidth).
		Height(a.bodyHeight()).
		MaxHeight(a.bodyHeight()).
		Render(strings.Join(lines, "\n"))
}

// overlayTopRight draws overlay over the top right corner of base
func overlayTopRight(base, overlay string, width int) string {
	baseLines := strings.Split(base, "\n")
	over := strings.Split(overlay, "\n")
	ow := lipgloss.Width(overlay)
	keep := max(width-ow, 0)
	for i, o := range over {
		if i >= len(baseLines) {
			baseLines = append(baseLines, "")
		}
		line := ansi.Truncate(baseLines[i], keep, "")
		if pad := keep - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		baseLines[i] = line + o
	}
	return strings.Join(baseLines, "\n")
}

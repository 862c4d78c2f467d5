package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/table"
	"github.com/rs/zerolog/log"
	"sigs.k8s.io/yaml"
)

type usersLoadedMsg struct {
	viewID int64
	users  []resources.User
	err    error
}

type groupsLoadedMsg struct {
	viewID int64
	groups []resources.Group
	err    error
}

type auditLoadedMsg struct {
	viewID   int64
	settings *resources.AuditSettings
	err      error
}

// adminDoneMsg ends a write to users or audit settings
type adminDoneMsg struct {
	viewID int64
	action string
	err    error
}

func (e *Env) adminCmd(viewID int64, action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		if err != nil {
			log.Warn().Err(err).Str("action", action).Msg("Admin action failed")
		} else {
			log.Info().Str("action", action).Msg("Admin action succeeded")
		}
		return adminDoneMsg{viewID: viewID, action: action, err: err}
	}
}

func (m adminDoneMsg) toast() tea.Cmd {
	if m.err != nil {
		return ReportError(m.action+" failed", m.err)
	}
	return Notify(format.LevelSuccess, m.action, "done")
}

var userColumns = []table.Column{
	{Key: table.KeyName, Title: "USERNAME", Width: 20, Sortable: true},
	{Key: "email", Title: "EMAIL", Width: 28, Sortable: true},
	{Key: "groups", Title: "GROUPS", Width: 28},
	{Key: "admin", Title: "ADMIN", Width: 6, Sortable: true},
	{Key: table.KeyAge, Title: "AGE", Width: 6, Sortable: true, Align: table.AlignRight},
}

// UsersView manages console user accounts
type UsersView struct {
	env    *Env
	id     int64
	table  *dataTable
	loaded bool
	err    error
	byID   map[string]resources.User
}

func NewUsersView(env *Env) *UsersView {
	return &UsersView{
		env:   env,
		id:    nextViewID(),
		table: newDataTable(userColumns, env.pageSize(), env.Styles, env.Keys),
	}
}

func (v *UsersView) Title() string    { return "users" }
func (v *UsersView) Capturing() bool  { return false }
func (v *UsersView) SetSize(w, h int) { v.table.SetSize(w, h) }

func (v *UsersView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Create, k.Delete, k.Refresh}
}

func (v *UsersView) Init() tea.Cmd { return v.fetch() }

func (v *UsersView) fetch() tea.Cmd {
	env, id := v.env, v.id
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		users, err := env.Backend.ListUsers(ctx)
		return usersLoadedMsg{viewID: id, users: users, err: err}
	}
}

func (v *UsersView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.loaded, v.err = true, msg.err
		v.setUsers(msg.users)
		return v, nil

	case adminDoneMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, tea.Batch(msg.toast(), v.fetch())

	case tea.KeyMsg:
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Refresh):
			return v, v.fetch()
		case key.Matches(msg, k.Create):
			return v, OpenModal(NewInputModal(v.env.Styles, "New user", "username [email] [group,group]", "", validateNewUser, v.create))
		case key.Matches(msg, k.Delete):
			row, ok := v.table.Selected()
			if !ok {
				return v, nil
			}
			id := row.ID
			return v, OpenModal(NewConfirmModal(v.env.Styles, "Delete user",
				fmt.Sprintf("Delete user %q?", row.Name()),
				v.env.adminCmd(v.id, "Delete user", func() error {
					ctx, cancel := v.env.requestContext()
					defer cancel()
					return v.env.Backend.DeleteUser(ctx, id)
				})))
		default:
			v.table.HandleKey(msg)
		}
	}
	return v, nil
}

func (v *UsersView) setUsers(users []resources.User) {
	now := v.env.now()
	rows := make([]table.Row, 0, len(users))
	v.byID = make(map[string]resources.User, len(users))
	for _, u := range users {
		id := u.ID
		if id == "" {
			id = u.Username
		}
		v.byID[id] = u
		admin := ""
		if u.Admin {
			admin = "yes"
		}
		age := table.Cell{}
		if !u.CreatedAt.IsZero() {
			age = table.Cell{Text: format.FormatAge(u.CreatedAt, now), Sort: -u.CreatedAt.Unix()}
		}
		rows = append(rows, table.Row{
			ID: id,
			Cells: map[string]table.Cell{
				table.KeyName: table.Text(u.Username),
				"email":       table.Text(u.Email),
				"groups":      table.Text(strings.Join(u.Groups, ",")),
				"admin":       table.Text(admin),
				table.KeyAge:  age,
			},
		})
	}
	v.table.SetRows(rows)
}

// parseNewUser reads "username [email] [group,group]"
func parseNewUser(s string) (resources.User, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return resources.User{}, fmt.Errorf("username is required")
	}
	u := resources.User{Username: fields[0]}
	for _, f := range fields[1:] {
		switch {
		case strings.Contains(f, "@") && u.Email == "":
			u.Email = f
		default:
			for _, g := range strings.Split(f, ",") {
				if g != "" {
					u.Groups = append(u.Groups, g)
				}
			}
		}
	}
	return u, nil
}

func validateNewUser(s string) error {
	_, err := parseNewUser(s)
	return err
}

func (v *UsersView) create(s string) tea.Cmd {
	u, err := parseNewUser(s)
	if err != nil {
		return ReportError("Create user", err)
	}
	return v.env.adminCmd(v.id, "Create user "+u.Username, func() error {
		ctx, cancel := v.env.requestContext()
		defer cancel()
		_, err := v.env.Backend.CreateUser(ctx, u)
		return err
	})
}

func (v *UsersView) View() string {
	switch {
	case v.err != nil:
		return renderError(v.env.Styles, v.err)
	case !v.loaded:
		return renderLoading(v.env.Styles, "")
	case len(v.byID) == 0:
		return renderEmpty(v.env.Styles, "No users")
	}
	return v.table.View()
}

var groupColumns = []table.Column{
	{Key: table.KeyName, Title: "NAME", Width: 24, Sortable: true},
	{Key: "description", Title: "DESCRIPTION", Width: 40},
	{Key: "members", Title: "MEMBERS", Width: 8, Sortable: true, Align: table.AlignRight},
}

// GroupsView lists console user groups
type GroupsView struct {
	env    *Env
	id     int64
	table  *dataTable
	loaded bool
	err    error
}

func NewGroupsView(env *Env) *GroupsView {
	return &GroupsView{
		env:   env,
		id:    nextViewID(),
		table: newDataTable(groupColumns, env.pageSize(), env.Styles, env.Keys),
	}
}

func (v *GroupsView) Title() string    { return "groups" }
func (v *GroupsView) Capturing() bool  { return false }
func (v *GroupsView) SetSize(w, h int) { v.table.SetSize(w, h) }

func (v *GroupsView) Bindings() []key.Binding {
	return []key.Binding{v.env.Keys.Refresh, v.env.Keys.SortNext}
}

func (v *GroupsView) Init() tea.Cmd {
	env, id := v.env, v.id
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		groups, err := env.Backend.ListGroups(ctx)
		return groupsLoadedMsg{viewID: id, groups: groups, err: err}
	}
}

func (v *GroupsView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case groupsLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.loaded, v.err = true, msg.err
		rows := make([]table.Row, 0, len(msg.groups))
		for _, g := range msg.groups {
			rows = append(rows, table.Row{
				ID: g.Name,
				Cells: map[string]table.Cell{
					table.KeyName: table.Text(g.Name),
					"description": table.Text(g.Description),
					"members":     {Text: strconv.Itoa(len(g.Members)), Sort: int64(len(g.Members))},
				},
			})
		}
		v.table.SetRows(rows)
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.env.Keys.Refresh) {
			return v, v.Init()
		}
		v.table.HandleKey(msg)
	}
	return v, nil
}

func (v *GroupsView) View() string {
	switch {
	case v.err != nil:
		return renderError(v.env.Styles, v.err)
	case !v.loaded:
		return renderLoading(v.env.Styles, "")
	case len(v.table.state.Rows()) == 0:
		return renderEmpty(v.env.Styles, "No groups")
	}
	return v.table.View()
}

// AuditView shows the audit settings as YAML and edits them
type AuditView struct {
	env      *Env
	id       int64
	settings *resources.AuditSettings
	err      error
	viewport viewport.Model
}

func NewAuditView(env *Env) *AuditView {
	return &AuditView{env: env, id: nextViewID(), viewport: viewport.New(0, 0)}
}

func (v *AuditView) Title() string   { return "audit settings" }
func (v *AuditView) Capturing() bool { return false }

func (v *AuditView) Bindings() []key.Binding {
	return []key.Binding{v.env.Keys.Edit, v.env.Keys.Refresh}
}

func (v *AuditView) SetSize(w, h int) {
	v.viewport.Width, v.viewport.Height = w, max(h, 1)
}

func (v *AuditView) Init() tea.Cmd {
	env, id := v.env, v.id
	return func() tea.Msg {
		ctx, cancel := env.requestContext()
		defer cancel()
		s, err := env.Backend.GetAuditSettings(ctx)
		return auditLoadedMsg{viewID: id, settings: s, err: err}
	}
}

// ParseAuditSettings reads edited settings, rejecting unknown fields
func ParseAuditSettings(text string) (resources.AuditSettings, error) {
	var s resources.AuditSettings
	if err := yaml.UnmarshalStrict([]byte(text), &s); err != nil {
		return s, fmt.Errorf("invalid audit settings: %w", err)
	}
	if s.RetentionDays < 0 {
		return s, fmt.Errorf("retentionDays must not be negative")
	}
	return s, nil
}

func (v *AuditView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case auditLoadedMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.err = msg.err
		if msg.settings != nil {
			v.settings = msg.settings
			text, _ := yaml.Marshal(v.settings)
			v.viewport.SetContent(string(text))
		}
		return v, nil

	case adminDoneMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		return v, tea.Batch(msg.toast(), v.Init())

	case tea.KeyMsg:
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Refresh):
			return v, v.Init()
		case key.Matches(msg, k.Edit) && v.settings != nil:
			text, err := yaml.Marshal(v.settings)
			if err != nil {
				return v, ReportError("Cannot edit", err)
			}
			return v, OpenModal(NewEditorModal(v.env.Styles, v.env.Keys, "Edit audit settings", string(text), v.save))
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *AuditView) save(text string) (tea.Cmd, error) {
	s, err := ParseAuditSettings(text)
	if err != nil {
		return nil, err
	}
	return v.env.adminCmd(v.id, "Update audit settings", func() error {
		ctx, cancel := v.env.requestContext()
		defer cancel()
		_, err := v.env.Backend.UpdateAuditSettings(ctx, s)
		return err
	}), nil
}

func (v *AuditView) View() string {
	switch {
	case v.err != nil && v.settings == nil:
		return renderError(v.env.Styles, v.err)
	case v.settings == nil:
		return renderLoading(v.env.Styles, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.viewport.View())
}

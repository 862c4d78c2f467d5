package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding. Views pick the ones that apply to them.
type KeyMap struct {
	// Global
	Quit    key.Binding
	Help    key.Binding
	Back    key.Binding
	Command key.Binding
	Refresh key.Binding
	Theme   key.Binding

	// Movement
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Enter  key.Binding

	// Lists
	Search       key.Binding
	SortNext     key.Binding
	SortFlip     key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	PageSizeUp   key.Binding
	PageSizeDown key.Binding
	Narrow       key.Binding
	Widen        key.Binding
	Namespace    key.Binding
	Cluster      key.Binding
	Delete       key.Binding
	Edit         key.Binding
	Create       key.Binding
	Logs         key.Binding
	Exec         key.Binding
	Aggregate    key.Binding

	// Detail
	NextTab key.Binding
	PrevTab key.Binding
	Reveal  key.Binding
	Scale   key.Binding
	Restart key.Binding
	Cordon  key.Binding
	Shell   key.Binding

	// Logs
	Follow     key.Binding
	Timestamps key.Binding
	Previous   key.Binding

	// Editor and terminal
	Save  key.Binding
	Close key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Command: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Theme:   key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),

		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		SortNext:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		SortFlip:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort direction")),
		PrevPage:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		NextPage:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		PageSizeUp:   key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "bigger pages")),
		PageSizeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
		Narrow:       key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrow column")),
		Widen:        key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "widen column")),
		Namespace:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "namespace")),
		Cluster:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cluster")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Create:       key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "create")),
		Logs:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logs")),
		Exec:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "exec")),
		Aggregate:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all clusters")),

		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Reveal:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reveal secret")),
		Scale:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "scale")),
		Restart: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart")),
		Cordon:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "cordon")),
		Shell:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "shell")),

		Follow:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
		Timestamps: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timestamps")),
		Previous:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),

		Save:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Close: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "close")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Command, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Enter, k.Back, k.Command, k.Refresh, k.Theme, k.Quit},
		{k.Search, k.SortNext, k.SortFlip, k.PrevPage, k.NextPage, k.PageSizeUp, k.PageSizeDown, k.Narrow, k.Widen},
		{k.Namespace, k.Cluster, k.Aggregate, k.Create, k.Edit, k.Delete, k.Logs, k.Exec},
		{k.NextTab, k.PrevTab, k.Reveal, k.Scale, k.Restart, k.Cordon},
		{k.Follow, k.Timestamps, k.Previous, k.Save, k.Close},
	}
}

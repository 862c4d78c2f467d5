package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/ui/styles"
)

// Modal is a dialog layered over the current view. Update returns a nil
// Modal once the dialog is finished.
type Modal interface {
	Update(msg tea.Msg) (Modal, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// ConfirmModal asks a yes/no question
type ConfirmModal struct {
	title     string
	message   string
	onConfirm tea.Cmd
	styles    *styles.StyleManager
}

// NewConfirmModal runs onConfirm when the user answers yes
func NewConfirmModal(sm *styles.StyleManager, title, message string, onConfirm tea.Cmd) *ConfirmModal {
	return &ConfirmModal{title: title, message: message, onConfirm: onConfirm, styles: sm}
}

func (m *ConfirmModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y", "enter":
		return nil, m.onConfirm
	case "n", "N", "esc", "q":
		return nil, nil
	}
	return m, nil
}

func (m *ConfirmModal) SetSize(int, int) {}

func (m *ConfirmModal) View() string {
	ds := m.styles.GetDialogStyles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		ds.Title.Render(m.title),
		ds.Content.Render(m.message),
		"",
		ds.Hint.Render("y confirm · n cancel"),
	)
	return ds.Container.Width(constants.ModalWidth).Render(body)
}

// InputModal reads one line of text
type InputModal struct {
	title    string
	input    textinput.Model
	validate func(string) error
	submit   func(string) tea.Cmd
	err      error
	styles   *styles.StyleManager
}

// NewInputModal calls submit with the entered text. validate may be nil.
func NewInputModal(sm *styles.StyleManager, title, placeholder, value string, validate func(string) error, submit func(string) tea.Cmd) *InputModal {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CharLimit = 256
	ti.Width = constants.ModalWidth - 8
	ti.Focus()
	return &InputModal{title: title, input: ti, validate: validate, submit: submit, styles: sm}
}

func (m *InputModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return nil, nil
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			return nil, m.submit(value)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = nil
	return m, cmd
}

func (m *InputModal) SetSize(int, int) {}

func (m *InputModal) View() string {
	ds := m.styles.GetDialogStyles()
	lines := []string{ds.Title.Render(m.title), m.input.View()}
	if m.err != nil {
		lines = append(lines, ds.Error.Render(m.err.Error()))
	}
	lines = append(lines, "", ds.Hint.Render("enter submit · esc cancel"))
	return ds.Container.Width(constants.ModalWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// EditorModal edits a YAML document
type EditorModal struct {
	title  string
	area   textarea.Model
	save   func(string) (tea.Cmd, error)
	err    error
	keys   KeyMap
	styles *styles.StyleManager
}

// NewEditorModal calls save with the edited text. A save error is shown
// inline and keeps the editor open.
func NewEditorModal(sm *styles.StyleManager, keys KeyMap, title, text string, save func(string) (tea.Cmd, error)) *EditorModal {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(constants.ModalWidth)
	ta.SetHeight(constants.EditorModalHeight)
	ta.SetValue(text)
	ta.Focus()
	return &EditorModal{title: title, area: ta, save: save, keys: keys, styles: sm}
}

// Value is the current text
func (m *EditorModal) Value() string {
	return m.area.Value()
}

// Err is the last save error
func (m *EditorModal) Err() error {
	return m.err
}

func (m *EditorModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Save):
			cmd, err := m.save(m.area.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			return nil, cmd
		case k.String() == "esc":
			return nil, nil
		}
	}
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m *EditorModal) SetSize(width, height int) {
	w := width - 8
	if w > constants.ModalWidth*2 {
		w = constants.ModalWidth * 2
	}
	if w > 20 {
		m.area.SetWidth(w)
	}
	if h := height - 10; h > 5 {
		m.area.SetHeight(h)
	}
}

func (m *EditorModal) View() string {
	ds := m.styles.GetDialogStyles()
	lines := []string{ds.Title.Render(m.title), m.area.View()}
	if m.err != nil {
		lines = append(lines, ds.Error.Render(m.err.Error()))
	}
	lines = append(lines, ds.Hint.Render("ctrl+s save · esc cancel"))
	return ds.Container.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

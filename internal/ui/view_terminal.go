package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/rs/zerolog/log"
)

type sessionOpenedMsg struct {
	viewID  int64
	session resources.Session
	err     error
}

type sessionOutputMsg struct {
	viewID int64
	text   string
	done   bool
	err    error
}

// TerminalView is a line oriented shell into a pod container or a node.
// Output is shown without escape sequences.
type TerminalView struct {
	env       *Env
	id        int64
	ref       resources.Ref
	container string
	node      bool

	session resources.Session
	cancel  context.CancelFunc
	output  chan sessionOutputMsg
	once    sync.Once

	lines    []string
	partial  string
	closed   bool
	err      error
	input    textinput.Model
	viewport viewport.Model
	cols     int
	rows     int
}

// NewExecView opens a shell in a pod
func NewExecView(env *Env, ref resources.Ref, container string) *TerminalView {
	return newTerminalView(env, ref, container, false)
}

// NewNodeShellView opens a shell on a node
func NewNodeShellView(env *Env, cluster, node string) *TerminalView {
	nodes, _ := resources.Lookup("nodes")
	return newTerminalView(env, resources.Ref{Cluster: cluster, Type: nodes, Name: node}, "", true)
}

func newTerminalView(env *Env, ref resources.Ref, container string, node bool) *TerminalView {
	ti := textinput.New()
	ti.Prompt = "$ "
	ti.Focus()
	return &TerminalView{
		env:       env,
		id:        nextViewID(),
		ref:       ref,
		container: container,
		node:      node,
		input:     ti,
		viewport:  viewport.New(0, 0),
	}
}

func (v *TerminalView) Context() (string, string) { return v.ref.Cluster, v.ref.Namespace }

func (v *TerminalView) Title() string {
	if v.node {
		return "shell node/" + v.ref.Name + " · " + v.ref.Cluster
	}
	t := "exec " + v.ref.Name
	if v.container != "" {
		t += "/" + v.container
	}
	return t + " · " + v.ref.Cluster + "/" + v.ref.Namespace
}

// Capturing is true while the session is open so every key reaches the shell
func (v *TerminalView) Capturing() bool { return !v.closed }

func (v *TerminalView) Bindings() []key.Binding {
	return []key.Binding{v.env.Keys.Close}
}

func (v *TerminalView) Init() tea.Cmd {
	env, ref, id, node, opts := v.env, v.ref, v.id, v.node, v.execOptions()
	// The session lives as long as this context
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	return tea.Batch(textinput.Blink, func() tea.Msg {
		var (
			s   resources.Session
			err error
		)
		if node {
			s, err = env.Backend.NodeShell(ctx, ref.Cluster, ref.Name)
		} else {
			s, err = env.Backend.Exec(ctx, ref, opts)
		}
		return sessionOpenedMsg{viewID: id, session: s, err: err}
	})
}

func (v *TerminalView) execOptions() resources.ExecOptions {
	return resources.ExecOptions{
		Container: v.container,
		Command:   resources.DefaultShell,
		TTY:       true,
	}
}

// pumpSession copies session output into the channel until the session ends
func pumpSession(viewID int64, s resources.Session, out chan<- sessionOutputMsg) {
	defer close(out)
	buf := make([]byte, 4096)
	for {
		n, err := s.Read(buf)
		if n > 0 {
			out <- sessionOutputMsg{viewID: viewID, text: ansi.Strip(string(buf[:n]))}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			out <- sessionOutputMsg{viewID: viewID, done: true, err: err}
			return
		}
	}
}

func (v *TerminalView) waitOutput() tea.Cmd {
	ch := v.output
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return sessionOutputMsg{viewID: v.id, done: true}
		}
		return msg
	}
}

// Close ends the session
func (v *TerminalView) Close() {
	v.once.Do(func() {
		if v.session != nil {
			if err := v.session.Close(); err != nil {
				log.Debug().Err(err).Str("ref", v.ref.String()).Msg("Session close")
			}
		}
		if v.cancel != nil {
			v.cancel()
		}
	})
	v.closed = true
}

func (v *TerminalView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-2, 1)
	v.input.Width = width - 4
	v.cols, v.rows = width, v.viewport.Height
	v.render()
}

func (v *TerminalView) resize() tea.Cmd {
	s, cols, rows := v.session, v.cols, v.rows
	if s == nil || cols <= 0 || rows <= 0 {
		return nil
	}
	return func() tea.Msg {
		if err := s.Resize(uint16(cols), uint16(rows)); err != nil {
			log.Debug().Err(err).Msg("Terminal resize failed")
		}
		return nil
	}
}

func (v *TerminalView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionOpenedMsg:
		if msg.viewID != v.id || v.closed {
			if msg.session != nil {
				_ = msg.session.Close()
			}
			return v, nil
		}
		if msg.err != nil {
			v.err, v.closed = msg.err, true
			return v, nil
		}
		v.session = msg.session
		v.output = make(chan sessionOutputMsg, 64)
		go pumpSession(v.id, v.session, v.output)
		log.Info().Str("ref", v.ref.String()).Bool("node", v.node).Msg("Shell session opened")
		return v, tea.Batch(v.waitOutput(), v.resize())

	case sessionOutputMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		v.write(msg.text)
		if msg.done {
			v.err = msg.err
			v.Close()
			return v, nil
		}
		return v, v.waitOutput()

	case tea.WindowSizeMsg:
		return v, v.resize()

	case tea.KeyMsg:
		if key.Matches(msg, v.env.Keys.Close) || v.closed && key.Matches(msg, v.env.Keys.Back) {
			v.Close()
			return v, Back()
		}
		if v.closed {
			return v, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			return v, v.send(v.input.Value() + "\n")
		case tea.KeyCtrlC:
			return v, v.send("\x03")
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return v, cmd
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *TerminalView) send(text string) tea.Cmd {
	v.input.SetValue("")
	s := v.session
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := io.WriteString(s, text); err != nil {
			return ReportError("Write failed", err)()
		}
		return nil
	}
}

// write appends output, keeping an unterminated last line open
func (v *TerminalView) write(text string) {
	if text == "" {
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(v.partial+text, "\n")
	v.partial = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		if i := strings.LastIndexByte(line, '\r'); i >= 0 {
			line = line[i+1:]
		}
		v.lines = append(v.lines, line)
	}
	if over := len(v.lines) - constants.MaxTerminalLines; over > 0 {
		v.lines = append([]string(nil), v.lines[over:]...)
	}
	v.render()
	v.viewport.GotoBottom()
}

func (v *TerminalView) render() {
	content := strings.Join(v.lines, "\n")
	if v.partial != "" {
		if content != "" {
			content += "\n"
		}
		content += v.partial
	}
	v.viewport.SetContent(content)
}

func (v *TerminalView) View() string {
	sm := v.env.Styles
	if v.err != nil && len(v.lines) == 0 {
		return renderError(sm, v.err)
	}
	footer := v.input.View()
	if v.closed {
		footer = sm.GetListStyles().Muted.Render("session closed, esc to go back")
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.viewport.View(), footer)
}

package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/format"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/ui/styles"
	"github.com/rs/zerolog/log"
)

// logBatch is the most lines delivered in one message
const logBatch = 200

var (
	logErrorPattern     = regexp.MustCompile(`(?i)\b(error|fatal|err|panic|exception|fail(ed)?|critical)\b`)
	logWarnPattern      = regexp.MustCompile(`(?i)\b(warn|warning|deprecated)\b`)
	logDebugPattern     = regexp.MustCompile(`(?i)\b(debug|trace)\b`)
	logTimestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?\s`)
)

// logLevel guesses the severity of a log line from its words
func logLevel(line string) format.Level {
	switch {
	case logErrorPattern.MatchString(line):
		return format.LevelError
	case logWarnPattern.MatchString(line):
		return format.LevelWarning
	case logDebugPattern.MatchString(line):
		return format.LevelMuted
	}
	return format.LevelInfo
}

type logItem struct {
	line string
	err  error
}

type logStreamMsg struct {
	viewID int64
	gen    int
	stream *logStream
	err    error
}

type logChunkMsg struct {
	viewID int64
	gen    int
	lines  []string
	done   bool
	err    error
}

// logStream pumps a log body into a channel of lines until ctx ends
type logStream struct {
	cancel context.CancelFunc
	body   io.ReadCloser
	lines  chan logItem
	once   sync.Once
}

func openLogStream(ctx context.Context, backend resources.SessionBackend, ref resources.Ref, opts resources.LogOptions) (*logStream, error) {
	ctx, cancel := context.WithCancel(ctx)
	body, err := backend.Logs(ctx, ref, opts)
	if err != nil {
		cancel()
		return nil, err
	}
	s := &logStream{cancel: cancel, body: body, lines: make(chan logItem, logBatch)}
	go s.pump(ctx)
	return s, nil
}

func (s *logStream) pump(ctx context.Context) {
	defer close(s.lines)
	sc := bufio.NewScanner(s.body)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case s.lines <- logItem{line: sc.Text()}:
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		select {
		case s.lines <- logItem{err: err}:
		case <-ctx.Done():
		}
	}
}

// Close stops the stream. It is safe to call more than once.
func (s *logStream) Close() {
	s.once.Do(func() {
		s.cancel()
		_ = s.body.Close()
	})
}

// wait delivers the next batch of lines: it blocks for one line then
// drains whatever is already buffered
func (s *logStream) wait(viewID int64, gen int) tea.Cmd {
	return func() tea.Msg {
		msg := logChunkMsg{viewID: viewID, gen: gen}
		item, ok := <-s.lines
		for {
			if !ok {
				msg.done = true
				return msg
			}
			if item.err != nil {
				msg.done, msg.err = true, item.err
				return msg
			}
			msg.lines = append(msg.lines, item.line)
			if len(msg.lines) >= logBatch {
				return msg
			}
			select {
			case item, ok = <-s.lines:
			default:
				return msg
			}
		}
	}
}

// LogView streams the log of one pod container
type LogView struct {
	env  *Env
	id   int64
	ref  resources.Ref
	opts resources.LogOptions

	gen      int
	stream   *logStream
	lines    []string
	dropped  int
	ended    bool
	err      error
	viewport viewport.Model
}

// NewLogView tails the log of ref, following by default
func NewLogView(env *Env, ref resources.Ref, container string) *LogView {
	return &LogView{
		env: env,
		id:  nextViewID(),
		ref: ref,
		opts: resources.LogOptions{
			Container: container,
			TailLines: constants.DefaultPodLogTailLines,
			Follow:    true,
		},
		viewport: viewport.New(0, 0),
	}
}

func (v *LogView) Context() (string, string) { return v.ref.Cluster, v.ref.Namespace }

func (v *LogView) Title() string {
	t := fmt.Sprintf("logs %s", v.ref.Name)
	if v.opts.Container != "" {
		t += "/" + v.opts.Container
	}
	return t + " · " + v.ref.Cluster + "/" + v.ref.Namespace
}

func (v *LogView) Capturing() bool { return false }

func (v *LogView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Follow, k.Timestamps, k.Previous, k.Top, k.Bottom}
}

func (v *LogView) Init() tea.Cmd {
	return v.open()
}

// open starts a new stream generation. Chunks from older generations are
// ignored.
func (v *LogView) open() tea.Cmd {
	v.Close()
	v.gen++
	v.lines, v.dropped, v.ended, v.err = nil, 0, false, nil
	v.render()

	env, ref, opts, id, gen := v.env, v.ref, v.opts, v.id, v.gen
	return func() tea.Msg {
		s, err := openLogStream(context.Background(), env.Backend, ref, opts)
		return logStreamMsg{viewID: id, gen: gen, stream: s, err: err}
	}
}

// Close ends the current stream
func (v *LogView) Close() {
	if v.stream != nil {
		v.stream.Close()
		v.stream = nil
	}
}

func (v *LogView) SetSize(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(height-1, 1)
	v.render()
}

func (v *LogView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case logStreamMsg:
		if msg.viewID != v.id {
			return v, nil
		}
		if msg.gen != v.gen {
			if msg.stream != nil {
				msg.stream.Close()
			}
			return v, nil
		}
		if msg.err != nil {
			v.err, v.ended = msg.err, true
			return v, nil
		}
		v.stream = msg.stream
		log.Debug().Str("ref", v.ref.String()).Bool("follow", v.opts.Follow).Msg("Log stream opened")
		return v, v.stream.wait(v.id, v.gen)

	case logChunkMsg:
		if msg.viewID != v.id || msg.gen != v.gen {
			return v, nil
		}
		v.append(msg.lines)
		if msg.done {
			v.ended = true
			v.err = msg.err
			v.Close()
			return v, nil
		}
		if v.stream == nil {
			return v, nil
		}
		return v, v.stream.wait(v.id, v.gen)

	case tea.KeyMsg:
		k := v.env.Keys
		switch {
		case key.Matches(msg, k.Follow):
			v.opts.Follow = !v.opts.Follow
			return v, v.open()
		case key.Matches(msg, k.Timestamps):
			v.opts.Timestamps = !v.opts.Timestamps
			return v, v.open()
		case key.Matches(msg, k.Previous):
			v.opts.Previous = !v.opts.Previous
			if v.opts.Previous {
				v.opts.Follow = false
			}
			return v, v.open()
		case key.Matches(msg, k.Top):
			v.viewport.GotoTop()
			return v, nil
		case key.Matches(msg, k.Bottom):
			v.viewport.GotoBottom()
			return v, nil
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *LogView) append(lines []string) {
	if len(lines) == 0 {
		return
	}
	v.lines = append(v.lines, lines...)
	if over := len(v.lines) - constants.MaxLogLines; over > 0 {
		v.lines = append([]string(nil), v.lines[over:]...)
		v.dropped += over
	}
	atBottom := v.viewport.AtBottom()
	v.render()
	if v.opts.Follow || atBottom {
		v.viewport.GotoBottom()
	}
}

func (v *LogView) render() {
	ls := v.env.Styles.GetLogStyles()
	var b strings.Builder
	for i, line := range v.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(colorizeLogLine(ls, line))
	}
	v.viewport.SetContent(b.String())
}

// colorizeLogLine dims a leading timestamp and colors the rest by level
func colorizeLogLine(ls styles.LogStyles, line string) string {
	ts := logTimestampPattern.FindString(line)
	rest := line[len(ts):]
	out := ls.Level(logLevel(rest)).Render(rest)
	if ts != "" {
		out = ls.TimestampStyle.Render(ts) + out
	}
	return out
}

func (v *LogView) status() string {
	var parts []string
	flag := func(name string, on bool) {
		state := "off"
		if on {
			state = "on"
		}
		parts = append(parts, name+":"+state)
	}
	flag("follow", v.opts.Follow)
	flag("timestamps", v.opts.Timestamps)
	flag("previous", v.opts.Previous)
	parts = append(parts, fmt.Sprintf("%d lines", len(v.lines)))
	if v.dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", v.dropped))
	}
	if v.ended {
		parts = append(parts, "stream ended")
	}
	return strings.Join(parts, "  ")
}

func (v *LogView) View() string {
	sm := v.env.Styles
	if v.err != nil && len(v.lines) == 0 {
		return renderError(sm, v.err)
	}
	body := v.viewport.View()
	if len(v.lines) == 0 {
		if v.ended {
			body = renderEmpty(sm, "No log lines")
		} else {
			body = renderLoading(sm, "")
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, sm.GetListStyles().Muted.Render(v.status()))
}

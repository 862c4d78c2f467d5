package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/rs/zerolog/log"
)

// ProgramOptions holds configuration for the Bubble Tea program
type ProgramOptions struct {
	Env *Env
	// StartPath is the first route, "/" when empty
	StartPath string
	// Cluster is the initial cluster context
	Cluster      string
	AltScreen    bool
	MouseSupport bool
	// Bridge delivers cache and monitor events to the program. It must be
	// the bridge the cache was built with.
	Bridge *Bridge
}

// DefaultProgramOptions returns the options used by the console command
func DefaultProgramOptions(env *Env) ProgramOptions {
	return ProgramOptions{
		Env:       env,
		StartPath: "/",
		AltScreen: true,
		Bridge:    &Bridge{},
	}
}

// Bridge forwards events raised on background goroutines into the running
// program. Events before the program starts are dropped.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (b *Bridge) attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// CacheUpdated is the cache's update hook
func (b *Bridge) CacheUpdated(key string) {
	b.send(cacheUpdatedMsg{key: key})
}

// ClusterEvent is the monitor listener
func (b *Bridge) ClusterEvent(e multicluster.Event) {
	b.send(clusterEventMsg{event: e})
}

// NewProgram creates the Bubble Tea program around a new App
func NewProgram(ctx context.Context, opts ProgramOptions) (*tea.Program, *App) {
	app := NewApp(opts.Env, opts.StartPath, opts.Cluster)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if opts.MouseSupport {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(app, programOpts...)
	if opts.Bridge != nil {
		opts.Bridge.attach(p)
		if opts.Env.Monitor != nil {
			opts.Env.Monitor.AddListener(opts.Bridge.ClusterEvent)
		}
	}
	log.Debug().Bool("altScreen", opts.AltScreen).Bool("mouse", opts.MouseSupport).Str("start", opts.StartPath).Msg("Creating program")
	return p, app
}

// RunTUI runs the console until the user quits or ctx is cancelled
func RunTUI(ctx context.Context, opts ProgramOptions) error {
	p, app := NewProgram(ctx, opts)

	if m := opts.Env.Monitor; m != nil {
		if err := m.Start(ctx); err != nil {
			return err
		}
		defer m.Stop()
	}

	if _, err := p.Run(); err != nil {
		return err
	}
	if c, ok := app.view.(closer); ok {
		c.Close()
	}
	log.Info().Str("path", app.Path()).Msg("Console exited")
	return nil
}

package main

import (
	"context"
	"io"

	"github.com/katyella/kconsole/internal/config"
	"github.com/katyella/kconsole/internal/k8s/resources"
	"github.com/katyella/kconsole/internal/logging"
	"github.com/katyella/kconsole/internal/metrics"
	"github.com/katyella/kconsole/internal/multicluster"
	"github.com/katyella/kconsole/internal/query"
	"github.com/katyella/kconsole/internal/ui"
	"github.com/katyella/kconsole/internal/ui/styles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalFlags override the environment when set on the command line
type globalFlags struct {
	apiURL      string
	token       string
	mode        string
	kubeconfig  string
	metricsAddr string
	insecure    bool
	debug       bool
}

// cli is the state shared by every command
type cli struct {
	newBackend backendFactory
	flags      globalFlags
	cfg        config.Config
	logCloser  io.Closer
	opened     resources.Backend
}

func (g globalFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("api-url") {
		cfg.APIURL = g.apiURL
	}
	if fs.Changed("token") {
		cfg.Token = g.token
	}
	if fs.Changed("mode") {
		cfg.Mode = g.mode
	}
	if fs.Changed("kubeconfig") {
		cfg.Kubeconfig = g.kubeconfig
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = g.metricsAddr
	}
	if fs.Changed("insecure-skip-tls-verify") {
		cfg.InsecureSkipVerify = g.insecure
	}
	if g.debug {
		cfg.Debug = true
	}
}

// setup loads the configuration and starts logging. The TUI owns stdout so
// it logs to a file in debug mode only.
func (c *cli) setup(cmd *cobra.Command, mode logging.Mode) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.flags.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	_, c.logCloser = logging.Setup(logging.Options{Mode: mode, Debug: cfg.Debug, Level: cfg.LogLevel, Out: cmd.ErrOrStderr()})
	log.Debug().Str("mode", cfg.Mode).Str("command", cmd.Name()).Msg("Configuration loaded")
	return nil
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// backend opens the data source once per process
func (c *cli) backend() (resources.Backend, error) {
	if c.opened != nil {
		return c.opened, nil
	}
	b, err := c.newBackend(c.cfg)
	if err != nil {
		return nil, err
	}
	c.opened = b
	return b, nil
}

// requestContext bounds one backend call
func (c *cli) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

type tuiOptions struct {
	route       string
	cluster     string
	noAltScreen bool
	mouse       bool
}

func newRootCmd(factory backendFactory) *cobra.Command {
	c := &cli{newBackend: factory}
	var opts tuiOptions

	root := &cobra.Command{
		Use:   "kconsole",
		Short: "kconsole - a terminal console for Kubernetes clusters",
		Long: `kconsole is a terminal user interface for inspecting and managing
Kubernetes clusters through the console API, or straight from kubeconfig
contexts with --mode direct.

Press ? for help once inside the application.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode := logging.ModeCLI
			if cmd == cmd.Root() {
				mode = logging.ModeTUI
			}
			return c.setup(cmd, mode)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.apiURL, "api-url", "", "Console API base URL (env KCONSOLE_API_URL)")
	pf.StringVar(&c.flags.token, "token", "", "Bearer token for the console API (env KCONSOLE_TOKEN)")
	pf.StringVar(&c.flags.mode, "mode", "", "Data source: api or direct (env KCONSOLE_MODE)")
	pf.StringVar(&c.flags.kubeconfig, "kubeconfig", "", "Path to kubeconfig in direct mode (defaults to $HOME/.kube/config)")
	pf.BoolVar(&c.flags.insecure, "insecure-skip-tls-verify", false, "Skip TLS verification of the console API")
	pf.BoolVarP(&c.flags.debug, "debug", "d", false, "Enable debug logging (the TUI logs to kconsole.log)")

	root.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "Disable alternate screen buffer")
	root.Flags().BoolVar(&opts.mouse, "mouse", false, "Enable mouse support")
	root.Flags().StringVar(&opts.route, "route", "/", "Initial route, e.g. /clusters/prod/pods")
	root.Flags().StringVar(&opts.cluster, "cluster", "", "Initial cluster context")
	root.Flags().StringVar(&c.flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	root.AddCommand(
		newClustersCmd(c),
		newGetCmd(c),
		newLogsCmd(c),
		newExecCmd(c),
		newVersionCmd(),
	)
	return root
}

// runTUI wires the cache, aggregator and cluster monitor around the
// backend and runs the console
func (c *cli) runTUI(ctx context.Context, opts tuiOptions) error {
	backend, err := c.backend()
	if err != nil {
		return err
	}

	if c.cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, c.cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Str("addr", c.cfg.MetricsAddr).Msg("Metrics server failed")
			}
		}()
	}

	bridge := &ui.Bridge{}
	cache := query.New(
		query.WithStaleTime(c.cfg.StaleTime),
		query.WithCacheTime(c.cfg.CacheTime),
		query.WithLoadTimeout(c.cfg.RequestTimeout),
		query.WithOnUpdate(bridge.CacheUpdated),
	)
	defer cache.Wait()

	themePath := ""
	if dir, err := config.Dir(); err == nil {
		themePath = styles.DefaultConfigPath(dir)
	}

	env := &ui.Env{
		Backend:    backend,
		Cache:      cache,
		Aggregator: multicluster.NewAggregator(backend, c.cfg.Concurrency),
		Monitor:    multicluster.NewMonitor(backend, c.cfg.RefreshInterval),
		Styles:     styles.NewStyleManager(styles.NewThemeManager(themePath, c.cfg.Theme)),
		Keys:       ui.DefaultKeyMap(),
		Config:     c.cfg,
	}

	programOpts := ui.DefaultProgramOptions(env)
	programOpts.Bridge = bridge
	programOpts.StartPath = opts.route
	programOpts.Cluster = opts.cluster
	programOpts.AltScreen = !opts.noAltScreen
	programOpts.MouseSupport = opts.mouse

	log.Info().Str("backend", backend.Name()).Str("route", opts.route).Msg("Starting console")
	return ui.RunTUI(ctx, programOpts)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kconsole",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = cmd.OutOrStdout().Write([]byte("kconsole version " + versionString() + "\n"))
		},
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/odvcencio/cursing/pkg/config"
	"github.com/odvcencio/cursing/pkg/logging"
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/telemetry"
	"github.com/odvcencio/cursing/pkg/ui/backend/tcell"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const busTracerName = "github.com/odvcencio/cursing/pkg/signal"

type options struct {
	configPath  string
	themePath   string
	metricsAddr string
	transport   string
	showVersion bool
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cursing", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "Path to a config file (default: ~/.cursing/config.yaml then ./.cursing/config.yaml)")
	fs.StringVar(&opts.themePath, "theme", "", "Theme file to load and watch for changes")
	fs.StringVar(&opts.metricsAddr, "metrics", "", "Serve /metrics and /healthz on this address")
	fs.StringVar(&opts.transport, "transport", "", "Collaborator transport: none, memory or nats")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version information and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, err
		}
		return opts, withExitCode(err, exitUsage)
	}
	if fs.NArg() > 0 {
		return opts, withExitCode(fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " ")), exitUsage)
	}
	return opts, nil
}

// apply lays the command-line overrides over the loaded configuration.
func (o options) apply(cfg *config.Config) error {
	if o.themePath != "" {
		cfg.UI.ThemeFile = o.themePath
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if o.transport != "" {
		cfg.Transport.Kind = o.transport
	}
	if err := cfg.Validate(); err != nil {
		return withExitCode(err, exitUsage)
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeForError(err))
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseOptions(args, os.Stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("cursing %s (commit %s, built %s)\n", version, commit, buildDate)
		return nil
	}
	if !isInteractiveTerminal() {
		return withExitCode(errors.New("cursing needs an interactive terminal"), exitNoTTY)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	logger.Info("starting",
		slog.String("version", version),
		slog.String("transport", cfg.Transport.Kind),
		slog.Bool("trace", cfg.Log.Trace),
	)

	stopTracing, err := startTracing(cfg.Log, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stopTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", slog.String("error", err.Error()))
		}
	}()

	th := theme.Default()
	if cfg.UI.ThemeFile != "" {
		if th, err = theme.Load(cfg.UI.ThemeFile); err != nil {
			return err
		}
	}

	screen, err := tcell.New()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	ctx, stop := ossignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics()
	events := signal.NewBus(busOptions(cfg, logger.Component("bus"), signal.WithObserver(metrics))...)

	ui := buildLayout(cfg.UI.Width, cfg.UI.Height)
	app := runtime.NewApp(runtime.Config{
		Backend:       screen,
		Root:          ui.root,
		Bus:           events,
		Theme:         th,
		MessageBuffer: cfg.UI.MessageBuffer,
		TickRate:      cfg.UI.TickRate,
		Logger:        logger.Component("app"),
	})

	collab, err := startCollaborator(ctx, cfg, events, app.PostEvent, logger.Component("collaborator"))
	if err != nil {
		return err
	}
	defer func() {
		if err := collab.Close(); err != nil {
			logger.Warn("collaborator shutdown", slog.String("error", err.Error()))
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// The other goroutines only live as long as the interface.
		defer cancel()
		if err := app.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return telemetry.Serve(gctx, cfg.Metrics.Addr, telemetry.Router(metrics), logger.Component("telemetry"))
		})
	}

	if cfg.UI.ThemeFile != "" {
		g.Go(func() error {
			return theme.Watch(gctx, cfg.UI.ThemeFile, func(t *theme.Theme, err error) {
				app.Post(runtime.ThemeMsg{Theme: t, Err: err})
			})
		})
	}

	err = g.Wait()
	logger.Info("stopped")
	return err
}

// startTracing installs a tracer provider exporting into the log file when
// tracing is enabled. The returned function flushes and stops it.
func startTracing(cfg config.LogConfig, logger *logging.Logger) (func(context.Context) error, error) {
	if !cfg.Trace {
		return func(context.Context) error { return nil }, nil
	}
	tp, err := telemetry.NewTracerProvider(logger.Writer(), version, logger.SessionID())
	if err != nil {
		return nil, err
	}
	return tp.Shutdown, nil
}

// busOptions returns the options shared by every bus the process creates.
// Later options win, so extra may replace the catalog.
func busOptions(cfg *config.Config, logger *slog.Logger, extra ...signal.Option) []signal.Option {
	opts := []signal.Option{
		signal.WithCatalog(signal.DefaultCatalog()),
		signal.WithLogger(logger),
	}
	if cfg.Log.Trace {
		opts = append(opts, signal.WithTracer(otel.Tracer(busTracerName)))
	}
	return append(opts, extra...)
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return nil, withExitCode(err, exitUsage)
		}
		return nil, err
	}
	if err := opts.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))
}

// ABOUTME: CLI entrypoint for plaintext with terminal UI (default), web server, and export modes.
// ABOUTME: Wires config, the key-value backend, metrics, and the workspace, then hands off to a front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/2389-research/plaintext/config"
	"github.com/2389-research/plaintext/export"
	"github.com/2389-research/plaintext/kvstore"
	"github.com/2389-research/plaintext/metrics"
	"github.com/2389-research/plaintext/seed"
	"github.com/2389-research/plaintext/tui"
	"github.com/2389-research/plaintext/web"
	"github.com/2389-research/plaintext/workspace"
)

var version = "dev"

// cliConfig holds all CLI configuration parsed from flags and positional arguments.
type cliConfig struct {
	envFile     string
	serverMode  bool
	bind        string
	store       string
	seedDir     string
	style       string
	showVersion bool

	command string // "" for the terminal UI, or "export"
	output  string // export destination; "" or "-" is stdout
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if cfg.showVersion {
		fmt.Printf("plaintext %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseArgs parses global flags and an optional subcommand.
func parseArgs(args []string, stderr io.Writer) (cliConfig, error) {
	var cfg cliConfig

	fs := flag.NewFlagSet("plaintext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.envFile, "env", ".env", "Path to a .env file (missing is fine)")
	fs.BoolVar(&cfg.serverMode, "server", false, "Start the web UI instead of the terminal UI")
	fs.StringVar(&cfg.bind, "bind", "", "Web listen address (default: $PLAINTEXT_BIND or 127.0.0.1:7780)")
	fs.StringVar(&cfg.store, "store", "", "Storage backend: sqlite, memory, redis, minio (default: $PLAINTEXT_STORE or sqlite)")
	fs.StringVar(&cfg.seedDir, "seed", "", "Directory whose files seed an empty workspace")
	fs.StringVar(&cfg.style, "style", "dark", "Glamour style for markdown previews in the terminal UI")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(stderr, version)
	}

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if fs.NArg() == 0 {
		return cfg, nil
	}

	switch fs.Arg(0) {
	case "export":
		cfg.command = "export"
		efs := flag.NewFlagSet("export", flag.ContinueOnError)
		efs.SetOutput(stderr)
		efs.StringVar(&cfg.output, "o", "", "Write the manifest to this file instead of stdout")
		if err := efs.Parse(fs.Args()[1:]); err != nil {
			return cfg, err
		}
		if efs.NArg() > 0 {
			return cfg, fmt.Errorf("export: unexpected argument %q", efs.Arg(0))
		}
	default:
		return cfg, fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	return cfg, nil
}

// loadSettings loads the environment configuration and applies flag overrides.
func loadSettings(cfg cliConfig) (*config.Config, error) {
	s, err := config.Load(cfg.envFile)
	if err != nil {
		return nil, err
	}
	if cfg.store != "" {
		s.Store.Backend = cfg.store
	}
	if cfg.bind != "" {
		s.Bind = cfg.bind
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// run dispatches to the appropriate mode based on the config.
// Returns an exit code: 0 for success, 1 for failure.
func run(cfg cliConfig) int {
	settings, err := loadSettings(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	// Signals cancel the front end; the workspace outlives it so Close can flush.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.command == "" && !cfg.serverMode {
		// Log lines would draw over the alternate screen.
		if err := os.MkdirAll(settings.Home, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		f, err := tea.LogToFile(filepath.Join(settings.Home, "plaintext.log"), "plaintext")
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file: %v\n", err)
			log.SetOutput(io.Discard)
		} else {
			defer f.Close()
		}
	}

	store, err := kvstore.Open(ctx, settings.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	failures := make(chan tui.Failure, 16)
	opts := []workspace.Option{
		workspace.WithMetrics(rec),
		workspace.WithFailureHandler(func(key string, err error) {
			log.Printf("component=workspace action=failure key=%s err=%v", key, err)
			select {
			case failures <- tui.Failure{Key: key, Err: err}:
			default:
			}
		}),
	}
	if cfg.seedDir != "" {
		opts = append(opts, workspace.WithSeeder(seed.FromFS(os.DirFS(cfg.seedDir))))
	}

	ws := workspace.New(context.Background(), store, opts...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ws.Close(closeCtx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: workspace not fully saved: %v\n", err)
		}
	}()

	switch {
	case cfg.command == "export":
		return runExport(ctx, ws, cfg.output)
	case cfg.serverMode:
		return runServer(ctx, ws, settings, rec, reg)
	default:
		return runTUI(ctx, ws, settings, cfg.style, failures)
	}
}

// runTUI runs the terminal UI until the user quits or a signal arrives.
func runTUI(ctx context.Context, ws *workspace.Manager, settings *config.Config, style string, failures <-chan tui.Failure) int {
	model := tui.NewAppModel(ctx, ws,
		tui.WithBackend(settings.Store.Backend),
		tui.WithGlamourStyle(style),
		tui.WithFailures(failures),
	)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runServer serves the web UI until a signal arrives.
func runServer(ctx context.Context, ws *workspace.Manager, settings *config.Config, rec *metrics.Recorder, reg *prometheus.Registry) int {
	srv, err := web.NewServer(web.ServerConfig{
		Addr:      settings.Bind,
		Workspace: ws,
		Backend:   settings.Store.Backend,
		Metrics:   rec,
		Gatherer:  reg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stderr, "plaintext %s listening on http://%s (store=%s)\n", version, settings.Bind, settings.Store.Backend)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runExport writes the YAML manifest once the workspace has loaded.
func runExport(ctx context.Context, ws *workspace.Manager, output string) int {
	if err := ws.Ready(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	out, err := export.YAML(ctx, ws.List())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if output == "" || output == "-" {
		if _, err := os.Stdout.Write(out); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "wrote %d documents to %s\n", len(ws.List()), output)
	return 0
}

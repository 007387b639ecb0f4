package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/tome/internal/catalog"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/mcp"
	"github.com/hpungsan/tome/internal/metrics"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/tags"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "list": true, "show": true, "add": true, "update": true,
	"delete": true, "duplicate": true, "export": true, "tags": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _____
  |_   _|__  _ __ ___   ___
    | |/ _ \| '_ ' _ \ / _ \
    | | (_) | | | | | |  __/
    |_|\___/|_| |_| |_|\___|

  Ruleset content catalog

  Usage: tome <command> [options]
         tome serve
         tome --help

  MCP server mode requires piped input.`)
}

// runtime bundles the collaborators shared by every surface.
type runtime struct {
	cfg     *config.Config
	env     *ops.Env
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// newRuntime wires the store, tag resolution and catalog loader over database.
func newRuntime(database *sql.DB, cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	m := metrics.New()
	backend := store.WithTimeout(db.NewStore(database), cfg.StoreTimeout())

	table, err := tags.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("load tag table: %w", err)
	}
	if cfg.TagTablePath != "" {
		if err := table.LoadOverrideFile(cfg.TagTablePath); err != nil {
			logger.Warn("tag table override not loaded",
				slog.String("path", cfg.TagTablePath), slog.String("error", err.Error()))
		}
	}

	resolver := tags.NewResolver(tags.NewCache(), table,
		tags.WithFetcher(backend),
		tags.WithLogger(logger),
		tags.WithObserver(func(t tags.Tier) { m.ObserveTagResolution(string(t)) }),
	)

	return &runtime{
		cfg: cfg,
		env: &ops.Env{
			Backend:  backend,
			Loader:   catalog.NewLoader(backend, cfg, logger, m),
			Resolver: resolver,
			Metrics:  m,
			Logger:   logger,
		},
		metrics: m,
		logger:  logger,
	}, nil
}

// watchTagTable reloads the override file until ctx is cancelled.
// Long-running modes call it; one-shot commands read the file once.
func (rt *runtime) watchTagTable(ctx context.Context) {
	if rt.cfg.TagTablePath == "" {
		return
	}
	w, err := tags.NewTableWatcher(rt.cfg.TagTablePath, rt.env.Resolver.Table(), rt.logger)
	if err != nil {
		rt.logger.Warn("tag table watch disabled", slog.String("error", err.Error()))
		return
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			rt.logger.Warn("tag table watcher stopped", slog.String("error", err.Error()))
		}
	}()
}

// newLogger builds a text logger at the configured level.
// Unknown levels fall back to info.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".tome")

	if err := config.LoadDotEnv(".env", filepath.Join(baseDir, ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAll(baseDir, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries JSON output and the MCP transport; logs go to stderr.
	logger := newLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	rt, err := newRuntime(database, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(rt)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'tome --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.watchTagTable(ctx)

	start := time.Now()
	logger.Debug("starting MCP server", slog.String("version", Version))
	if err := mcp.Run(rt.env, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("MCP server stopped", slog.Duration("uptime", time.Since(start)))
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cusc/copywriter/internal/auth"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/db"
	"github.com/cusc/copywriter/internal/mcp"
	"github.com/cusc/copywriter/internal/snapshot"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isMCPMode reports whether to serve MCP over stdio: no arguments and piped
// stdin, which is how agent hosts launch the binary.
func isMCPMode(args []string) bool {
	return len(args) < 2 && !isTerminal()
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _   _ ___  ___
  / __| | | / __|/ __|
 | (__| |_| \__ \ (__
  \___|\___/|___/\___|  copywriter

  Marketing prompt composer for courses and events

  Usage: copywriter <command> [options]
         copywriter --help

  MCP server mode requires piped input.`)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before touching the data directory.
	if isHelpOrVersion(os.Args) {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	baseDir, err := config.BaseDir()
	if err != nil {
		return fmt.Errorf("could not determine data directory: %w", err)
	}
	if err := config.LoadDotEnv(baseDir); err != nil {
		return err
	}
	if err := config.LoadDotEnv("."); err != nil {
		return err
	}
	// COPYWRITER_HOME may come from a .env file.
	if baseDir, err = config.BaseDir(); err != nil {
		return fmt.Errorf("could not determine data directory: %w", err)
	}

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = config.ApplyEnv(cfg)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("ignoring unknown disabled_tools", "tools", unknown)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	ctx := context.Background()
	storage := db.NewStorage(database)
	env := &appEnv{
		store:   snapshot.New(ctx, storage, snapshot.WithLogger(logger)),
		gate:    auth.New(ctx, storage, cfg.ExtraUsers, logger),
		cfg:     cfg,
		baseDir: baseDir,
		logger:  logger,
	}

	if isMCPMode(args) {
		args = []string{args[0], "mcp"}
	}

	runErr := newCLIApp(env).Run(args)
	if err := env.store.Flush(ctx); err != nil {
		logger.Error("saving snapshots failed", "error", err)
	}
	return runErr
}

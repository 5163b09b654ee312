//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-discovery/internal/config"
	"github.com/pgEdge/pgedge-discovery/internal/discovery"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// API keys may come from a .env file in the working directory
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	jsonOutput bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "pgedge-discovery",
		Short: "pgEdge Model Discovery - answer questions about AI models and rank them",
		Long: `pgEdge Model Discovery answers natural-language questions about AI models
from a knowledge base and ranks models with multi-criteria decision algorithms.

If --config is not specified, the configuration is searched for in:
    1. /etc/pgedge/pgedge-discovery.yaml
    2. pgedge-discovery.yaml (in binary directory)`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		newQueryCommand(opts),
		newRankCommand(opts),
		newCompareCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pgEdge Model Discovery\n")
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", gitCommit)
		},
	}
}

// openService loads the configuration and API keys and builds the service.
func openService(ctx context.Context, opts *rootOptions) (*discovery.Service, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	keys, err := config.NewAPIKeyLoader(cfg.APIKeys).LoadRequiredKeys(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load API keys: %w", err)
	}

	svc, err := discovery.New(ctx, discovery.Options{Config: cfg, Keys: keys, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery service: %w", err)
	}
	return svc, nil
}

// newLogger writes to stderr so that results on stdout stay parseable.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
}

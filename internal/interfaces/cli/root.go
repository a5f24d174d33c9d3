// Package cli defines the patentlake command tree: the root command with
// global flags and the ingest, fetch, ask, and schema subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/patentlake/internal/config"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patentlake/internal/infrastructure/monitoring/metrics"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	DBPath     string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.AppMetrics

	// Collector is non-nil only when metrics are enabled in configuration.
	Collector metrics.Collector
}

// NewRootCommand creates the root cobra command with global flags and all
// subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "patentlake",
		Short:   "patentlake - patent metadata pipeline and query agent",
		Long:    "patentlake fetches Google Patents metadata through SerpAPI, ingests it\ninto a relational SQLite store, and answers natural-language questions\nabout the stored data through an LLM-driven SQL agent.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./patentlake.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides storage.path)")

	cmd.AddCommand(
		newIngestCmd(),
		newFetchCmd(),
		newAskCmd(),
		newSchemaCmd(),
	)

	return cmd
}

// persistentPreRun initializes config, logger, and metrics, then stores a
// CLIContext on the command's context.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.DBPath != "" {
		cfg.Storage.Path = opts.DBPath
	}

	// CLI logs go to stderr so stdout stays clean for command output.
	logCfg := cfg.Log
	logCfg.OutputPaths = []string{"stderr"}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logging.SetDefault(logger)

	cliCtx := &CLIContext{Config: cfg, Logger: logger}
	if cfg.Metrics.Enabled {
		collector, err := metrics.NewCollector(cfg.MetricsCollectorConfig(), logger)
		if err != nil {
			return fmt.Errorf("metrics initialization failed: %w", err)
		}
		cliCtx.Collector = collector
		cliCtx.Metrics = metrics.NewAppMetrics(collector)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))

	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./patentlake.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".patentlake", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/patentlake/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	// No config file found; environment variables and defaults still apply.
	return config.LoadFromEnv()
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("CLI context not initialized; run through the root command")
	}

	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}

	return nil
}

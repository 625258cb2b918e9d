// Package cmd contains all CLI commands for jifmactl
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jifma-project/jifmactl/internal/config"
	"github.com/jifma-project/jifmactl/internal/gateway"
	"github.com/jifma-project/jifmactl/internal/output"
	"github.com/jifma-project/jifmactl/internal/session"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	colorFlag string
	apiURL    string
	cfg       *config.Config
	logger    *slog.Logger
	version   = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jifmactl",
	Short: "JIFMA tournament client",
	Long: `jifmactl is a terminal client for the JIFMA tournament site.

It reads news, results, the game schedule and the medal table from the public
API, and gives administrators a console to create, edit and delete records.

Example usage:
  jifmactl schedule                   # Games grouped by day
  jifmactl schedule --sport futsal    # Only futsal games
  jifmactl medals                     # Medal table with podium
  jifmactl login -u admin             # Start an admin session
  jifmactl admin dashboard            # Record counts
  jifmactl admin create team --set name=Química --set city=Fortaleza`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .jifmactl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides api.base_url)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error

	logger = newLogger("info", "text")

	if _, err := output.ParseColorMode(colorFlag); err != nil {
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: "Use --color auto, --color always or --color never",
			ExitCode:   output.ExitUsageError,
		}
	}

	// JIFMACTL_* variables may live in a .env file; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return &output.CLIError{
			Summary:  "cannot read .env",
			Detail:   err.Error(),
			ExitCode: output.ExitConfigError,
			Cause:    err,
		}
	}

	cfg, err = config.Load(cfgFile, apiURL)
	if err != nil {
		return &output.CLIError{
			Summary:    "invalid configuration",
			Detail:     err.Error(),
			Suggestion: "Check .jifmactl.yaml syntax or use --config flag",
			ExitCode:   output.ExitConfigError,
			Cause:      err,
		}
	}

	logger = newLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"config_file", cfg.File,
		"api", cfg.API.BaseURL,
		"session_backend", cfg.Session.Backend,
		"timezone", cfg.Display.Timezone,
	)

	return nil
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newPrinter creates a printer bound to the command's output streams
func newPrinter(cmd *cobra.Command) *output.Printer {
	mode, _ := output.ParseColorMode(colorFlag)
	return output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: cfg.Output.Colors,
		Quiet:        quiet,
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
	})
}

// openSession restores the login session from the configured store. The returned
// function releases the store.
func openSession(ctx context.Context) (*session.Context, func(), error) {
	var store session.Store
	done := func() {}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		rs, err := session.NewRedisStore(cfg.Session.RedisURL, cfg.Session.RedisPrefix)
		if err != nil {
			return nil, nil, configError("cannot use the redis session store", err)
		}
		store = rs
		done = func() { _ = rs.Close() }
	default:
		path := cfg.Session.Path
		if path == "" {
			path = session.DefaultFilePath()
		}
		store = session.NewFileStore(path)
	}

	sess, err := session.New(ctx, store)
	if err != nil {
		done()
		return nil, nil, fmt.Errorf("restoring session: %w", err)
	}
	return sess, done, nil
}

// newGateway creates the API client. tokens may be nil for public reads.
func newGateway(tokens gateway.TokenSource) *gateway.Client {
	return gateway.NewClient(gateway.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
	}, tokens, logger)
}

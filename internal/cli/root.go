// Package cli implements the courtside command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fortuna/courtside/internal/bootstrap"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type rootOptions struct {
	envFile  string
	logLevel string
	// lookupEnv replaces the process environment in tests
	lookupEnv func(string) (string, bool)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courtside",
		Short: "Basketball box score chat bot",
		Long: `courtside scrapes the latest NBA box scores into a player store and
answers LINE chat messages with a stat card for the named player.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the process environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newScrapeCmd(opts),
		newLookupCmd(opts),
	)
	return cmd
}

// setup loads configuration, builds the logger and wires the components
func (o *rootOptions) setup(ctx context.Context) (*bootstrap.Components, error) {
	cfg, err := config.Load(config.Options{EnvFile: o.envFile, Lookup: o.lookupEnv})
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}

	logger, err := logging.New(logging.Config{
		Environment: cfg.App.Environment,
		Level:       cfg.Logger.Level,
	})
	if err != nil {
		return nil, err
	}

	c, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return c, nil
}

func teardown(c *bootstrap.Components) {
	if err := c.Close(); err != nil {
		c.Logger.Warn("error closing components", zap.Error(err))
	}
	c.Logger.Sync()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wonny/perfdash/pkg/config"
)

var (
	// Global flags
	verbose   bool
	logFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "perfdash",
	Short: "perfdash - portfolio performance analytics",
	Long: `perfdash CLI

Tracks a brokerage account's equity curve against a benchmark index.
Serves the rebased series and KPIs over HTTP and refreshes them on a timer.

Usage:
  go run ./cmd/perfdash [command]

Examples:
  go run ./cmd/perfdash serve
  go run ./cmd/perfdash snapshot --range 1M
  go run ./cmd/perfdash snapshot --json
  go run ./cmd/perfdash clock`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json|console)")
}

// loadConfig loads the environment config and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// commandContext is the command's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

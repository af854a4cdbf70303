package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/perfdash/pkg/logger"
)

// clockCmd prints whether the market is open
var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Show the market clock",
	RunE:  runClock,
}

func init() {
	rootCmd.AddCommand(clockCmd)
}

func runClock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(cfg, cmd.ErrOrStderr())

	md, rc, err := buildProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("build provider: %w", err)
	}
	defer rc.Close()

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.Provider.Timeout)
	defer cancel()

	clock, err := md.FetchMarketClock(ctx)
	if err != nil {
		return fmt.Errorf("fetch clock: %w", err)
	}

	PrintClock(cmd.OutOrStdout(), clock)
	return nil
}

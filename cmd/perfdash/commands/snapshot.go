package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/internal/performance"
	"github.com/wonny/perfdash/pkg/logger"
)

// snapshotCmd runs a single refresh cycle and prints the result
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch once and print the dashboard",
	Long: `Runs one refresh cycle against the configured provider and prints the KPIs and
the rebased series.

Example:
  go run ./cmd/perfdash snapshot
  go run ./cmd/perfdash snapshot --range 1W
  go run ./cmd/perfdash snapshot --json`,
	RunE: runSnapshot,
}

var (
	snapshotRange string
	snapshotJSON  bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotRange, "range", "r", "", "time range: 1W, 1M, 1Y, ALL (default DEFAULT_RANGE)")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "print the snapshot as JSON")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// keep stdout clean for the snapshot itself
	log := logger.NewWithWriter(cfg, cmd.ErrOrStderr())

	opts, err := performance.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("tracker options: %w", err)
	}
	if snapshotRange != "" {
		if opts.Range, err = contracts.ParseTimeRange(snapshotRange); err != nil {
			return err
		}
	}

	md, rc, err := buildProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("build provider: %w", err)
	}
	defer rc.Close()

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.Provider.Timeout*2)
	defer cancel()

	snap, err := fetchSnapshot(ctx, performance.NewTracker(md, opts, log))
	if err != nil {
		return err
	}

	return writeSnapshot(cmd, snap, snapshotJSON, cfg.Analytics.BenchmarkSymbol)
}

// fetchSnapshot runs one cycle and returns the resulting snapshot
func fetchSnapshot(ctx context.Context, tracker *performance.Tracker) (contracts.DashboardSnapshot, error) {
	if err := tracker.Refresh(ctx); err != nil {
		return contracts.DashboardSnapshot{}, fmt.Errorf("refresh: %w", err)
	}
	return tracker.Snapshot(), nil
}

func writeSnapshot(cmd *cobra.Command, snap contracts.DashboardSnapshot, asJSON bool, benchmark string) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	PrintSnapshot(out, snap, benchmark)
	return nil
}

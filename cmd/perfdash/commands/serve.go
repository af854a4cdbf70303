package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/perfdash/internal/api"
	"github.com/wonny/perfdash/internal/api/handlers"
	"github.com/wonny/perfdash/internal/performance"
	"github.com/wonny/perfdash/internal/scheduler"
	"github.com/wonny/perfdash/internal/scheduler/jobs"
	"github.com/wonny/perfdash/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the refresh loop",
	Long: `Starts the HTTP API and refreshes the dashboard every REFRESH_INTERVAL.

Endpoints:
  GET  /health                      - Health check
  GET  /api/performance             - Dashboard snapshot
  PUT  /api/performance/range       - Select 1W | 1M | 1Y | ALL
  GET  /api/performance/chart.png   - Strategy vs benchmark chart
  GET  /api/performance/stream      - Websocket snapshot stream
  GET  /api/market/clock            - Market open/closed
  GET  /api/scheduler/jobs          - Job statistics

Example:
  go run ./cmd/perfdash serve
  go run ./cmd/perfdash serve --port 8090`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Market data provider
	md, rc, err := buildProvider(cfg, log)
	if err != nil {
		return fmt.Errorf("build provider: %w", err)
	}
	defer rc.Close()

	// 4. Tracker
	opts, err := performance.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("tracker options: %w", err)
	}
	tracker := performance.NewTracker(md, opts, log)

	// 5. Scheduler: the next tick retries, so no in-run retries
	sched := scheduler.New(log, scheduler.WithRetry(0, 0))
	if err := sched.AddJob(jobs.NewRefreshJob(tracker, cfg.Analytics.RefreshInterval, log)); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}
	refreshNow := func() error { return sched.RunJob(jobs.RefreshJobName) }

	// 6. Router and server
	router := api.NewRouter(api.Handlers{
		Dashboard:   tracker,
		Performance: handlers.NewPerformanceHandler(tracker, refreshNow, cfg.Analytics.BenchmarkSymbol, log),
		Stream:      handlers.NewStreamHandler(tracker, log),
		Market:      handlers.NewMarketHandler(md, log),
		Scheduler:   handlers.NewSchedulerHandler(sched),
		Cache:       rc,
	}, log)
	server := api.New(cfg, log, router)

	// 7. Start
	sched.Start()
	if err := refreshNow(); err != nil {
		log.WithError(err).Warn("Initial refresh not started")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"interval": cfg.Analytics.RefreshInterval,
		"range":    opts.Range,
		"cache":    rc.Enabled(),
	}).Info("perfdash started")

	// Wait for interrupt signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		log.WithError(serveErr).Error("API server stopped unexpectedly")
	}

	log.Info("Shutting down...")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return serveErr
}

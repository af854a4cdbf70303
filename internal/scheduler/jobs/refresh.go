package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/perfdash/internal/performance"
	"github.com/wonny/perfdash/pkg/logger"
)

// RefreshJobName is the scheduler name of the dashboard refresh
const RefreshJobName = "performance_refresh"

// Refresher is what the job drives
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshJob runs one dashboard refresh cycle per tick
type RefreshJob struct {
	tracker  Refresher
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

// NewRefreshJob creates a refresh job firing every interval.
// Each run is bounded by the interval so a hung upstream cannot pile up cycles.
func NewRefreshJob(tracker Refresher, interval time.Duration, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		tracker:  tracker,
		interval: interval,
		timeout:  interval,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return RefreshJobName
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run executes one refresh cycle
func (j *RefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	err := j.tracker.Refresh(ctx)
	if errors.Is(err, performance.ErrSuperseded) {
		j.logger.Debug("Refresh superseded by a newer cycle")
		return nil
	}
	return err
}

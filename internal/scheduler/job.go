package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/perfdash/internal/contracts"
)

// Job represents a scheduled job
// ⭐ SSOT: the scheduled job interface is defined here only
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression
	// Examples: "@every 60s", "0 */5 * * * *" (seconds field enabled)
	Schedule() string
}

// ErrorKind groups failed runs by cause
type ErrorKind string

const (
	KindDataUnavailable ErrorKind = "data_unavailable"
	KindTimeout         ErrorKind = "timeout"
	KindCanceled        ErrorKind = "canceled"
	KindFailed          ErrorKind = "failed"
)

// classify maps a run error onto an ErrorKind. nil maps to "".
func classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, contracts.ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindFailed
	}
}

// JobResult is one finished run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	ErrorKind ErrorKind     `json:"error_kind,omitempty"`
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobHistory keeps the latest results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest beyond maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// ConsecutiveFailures counts failed runs since the last success
func (h *JobHistory) ConsecutiveFailures() int {
	n := 0
	for i := len(h.Results) - 1; i >= 0 && !h.Results[i].Success; i-- {
		n++
	}
	return n
}

// JobStats summarizes the history of one job
type JobStats struct {
	JobName             string     `json:"job_name"`
	Schedule            string     `json:"schedule"`
	TotalRuns           int        `json:"total_runs"`
	SuccessCount        int        `json:"success_count"`
	FailureCount        int        `json:"failure_count"`
	SuccessRate         float64    `json:"success_rate"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastRun             *time.Time `json:"last_run,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
	LastErrorKind       ErrorKind  `json:"last_error_kind,omitempty"`
	NextRun             *time.Time `json:"next_run,omitempty"`
}

// summarize folds the history into stats. Schedule and NextRun are left to the caller.
func (h *JobHistory) summarize(name string) JobStats {
	stats := JobStats{
		JobName:             name,
		TotalRuns:           len(h.Results),
		ConsecutiveFailures: h.ConsecutiveFailures(),
	}

	for i := range h.Results {
		r := h.Results[i]
		start := r.StartTime
		stats.LastRun = &start
		if r.Success {
			stats.SuccessCount++
			stats.LastSuccess = &start
			continue
		}
		stats.FailureCount++
		stats.LastFailure = &start
		stats.LastError = r.Error
		stats.LastErrorKind = r.ErrorKind
	}

	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalRuns)
	}
	return stats
}

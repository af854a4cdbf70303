package handlers

import (
	"net/http"

	"github.com/wonny/perfdash/internal/scheduler"
)

// JobStatsSource reports scheduler statistics
type JobStatsSource interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SchedulerHandler exposes job statistics
type SchedulerHandler struct {
	source JobStatsSource
}

// NewSchedulerHandler creates a scheduler handler
func NewSchedulerHandler(source JobStatsSource) *SchedulerHandler {
	return &SchedulerHandler{source: source}
}

// GetJobs returns per-job run statistics
// GET /api/scheduler/jobs
func (h *SchedulerHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.source.GetJobStats())
}

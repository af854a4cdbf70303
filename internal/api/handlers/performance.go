package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/perfdash/internal/chart"
	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/pkg/logger"
)

// Dashboard is the read/write surface of the refresh loop
type Dashboard interface {
	Snapshot() contracts.DashboardSnapshot
	SetRange(r contracts.TimeRange) error
	Subscribe() (<-chan contracts.DashboardSnapshot, func())
}

// PerformanceHandler serves the dashboard snapshot, range selection and chart
// ⭐ SSOT: performance API handlers live in this struct only
type PerformanceHandler struct {
	dash      Dashboard
	refresh   func() error
	benchmark string
	logger    *logger.Logger
}

// NewPerformanceHandler creates a performance handler.
// refresh, when non-nil, is called after a range change to start a cycle right away.
func NewPerformanceHandler(dash Dashboard, refresh func() error, benchmark string, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		dash:      dash,
		refresh:   refresh,
		benchmark: benchmark,
		logger:    log,
	}
}

// GetPerformance returns the current dashboard snapshot
// GET /api/performance
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dash.Snapshot())
}

type setRangeRequest struct {
	Range string `json:"range"`
}

// SetRange selects the lookback window and triggers a refresh
// PUT /api/performance/range
func (h *PerformanceHandler) SetRange(w http.ResponseWriter, r *http.Request) {
	var req setRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rng, err := contracts.ParseTimeRange(req.Range)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.dash.SetRange(rng); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.refresh != nil {
		if err := h.refresh(); err != nil {
			h.logger.WithError(err).Warn("Failed to trigger refresh after range change")
		}
	}

	respondJSON(w, http.StatusAccepted, h.dash.Snapshot())
}

// GetChart renders the current series as PNG
// GET /api/performance/chart.png
func (h *PerformanceHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	snap := h.dash.Snapshot()
	if !snap.HasData() {
		respondError(w, http.StatusServiceUnavailable, "No performance data yet")
		return
	}

	buf, err := chart.RenderPNG(snap, chart.Options{Benchmark: h.benchmark})
	if errors.Is(err, chart.ErrNoSeries) {
		respondError(w, http.StatusServiceUnavailable, "No performance data yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to render chart")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

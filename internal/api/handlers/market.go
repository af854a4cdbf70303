package handlers

import (
	"net/http"

	"github.com/wonny/perfdash/internal/provider"
	"github.com/wonny/perfdash/pkg/logger"
)

// MarketHandler serves the market open/closed badge
type MarketHandler struct {
	clock  provider.Clock
	logger *logger.Logger
}

// NewMarketHandler creates a market handler
func NewMarketHandler(clock provider.Clock, log *logger.Logger) *MarketHandler {
	return &MarketHandler{clock: clock, logger: log}
}

// GetClock returns whether the market is open and the next session boundaries
// GET /api/market/clock
func (h *MarketHandler) GetClock(w http.ResponseWriter, r *http.Request) {
	clock, err := h.clock.FetchMarketClock(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Failed to fetch market clock")
		respondError(w, http.StatusBadGateway, "Market clock unavailable")
		return
	}

	respondJSON(w, http.StatusOK, clock)
}

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	syncsvc "github.com/ternarybob/folio/internal/services/sync"
)

// MarketDataHandler serves stored quotes and manual refresh triggers
type MarketDataHandler struct {
	marketData interfaces.MarketDataStorage
	sync       *syncsvc.Service
	logger     arbor.ILogger
}

// NewMarketDataHandler creates a new MarketDataHandler
func NewMarketDataHandler(marketData interfaces.MarketDataStorage, sync *syncsvc.Service, logger arbor.ILogger) *MarketDataHandler {
	return &MarketDataHandler{
		marketData: marketData,
		sync:       sync,
		logger:     logger,
	}
}

// LatestHandler handles GET /api/market-data, returning the most recent
// quote per symbol. An optional ?symbol= narrows the result.
func (h *MarketDataHandler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	latest, err := h.marketData.Latest(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	if symbol := strings.ToUpper(r.URL.Query().Get("symbol")); symbol != "" {
		row, ok := latest[symbol]
		if !ok {
			WriteError(w, http.StatusNotFound, "no market data for symbol: "+symbol)
			return
		}
		WriteJSON(w, http.StatusOK, row)
		return
	}

	WriteJSON(w, http.StatusOK, latest)
}

// HistoryHandler handles GET /api/market-data/{symbol}/history, returning
// stored rows for the symbol, newest first.
func (h *MarketDataHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	suffix := PathSuffix(r, "/api/market-data/")
	symbol := strings.ToUpper(strings.TrimSuffix(suffix, "/history"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol required")
		return
	}

	rows, err := h.marketData.GetBySymbol(r.Context(), symbol, 100)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// RefreshHandler handles POST /api/market-data/refresh. The sync runs in
// the background; a refresh already in flight is reported but not queued.
func (h *MarketDataHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.sync.IsSyncing() {
		WriteJSON(w, http.StatusAccepted, map[string]string{
			"status":  "skipped",
			"message": "refresh already in progress",
		})
		return
	}

	go func() {
		if err := h.sync.Sync(context.Background()); err != nil {
			h.logger.Error().Err(err).Msg("Manual market data refresh failed")
		}
	}()

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "refresh started",
	})
}

package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/services/history"
)

// HistoryHandler serves historical valuation series
type HistoryHandler struct {
	aggregator *history.Aggregator
	logger     arbor.ILogger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(aggregator *history.Aggregator, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// SymbolHandler handles GET /api/history?symbol=, returning the per-date
// valuation of a single holding in its trade currency. An optional
// ?account_id= restricts the positions considered.
func (h *HistoryHandler) SymbolHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol query parameter required")
		return
	}

	result, err := h.aggregator.SymbolHistory(
		r.Context(),
		symbol,
		r.URL.Query().Get("account_id"),
		UseCacheParam(r),
	)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// AggregateHandler handles GET /api/history/aggregate, returning the
// reporting-currency valuation series for the whole portfolio or, with
// ?account_id=, a single account.
func (h *HistoryHandler) AggregateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	result, err := h.aggregator.Aggregate(r.Context(), history.AggregateOptions{
		AccountID: r.URL.Query().Get("account_id"),
		UseCache:  UseCacheParam(r),
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// IndustryHandler handles GET /api/history/industry?industry=, returning
// the valuation series for equities mapped to one industry.
func (h *HistoryHandler) IndustryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	industry := r.URL.Query().Get("industry")
	if industry == "" {
		WriteError(w, http.StatusBadRequest, "industry query parameter required")
		return
	}

	result, err := h.aggregator.AggregateByIndustry(r.Context(), industry, UseCacheParam(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

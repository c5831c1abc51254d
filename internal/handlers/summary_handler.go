package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/services/summary"
)

// SummaryHandler serves the enriched portfolio summary
type SummaryHandler struct {
	summary *summary.Service
	logger  arbor.ILogger
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(service *summary.Service, logger arbor.ILogger) *SummaryHandler {
	return &SummaryHandler{
		summary: service,
		logger:  logger,
	}
}

// Handler handles GET /api/summary?group_by=, defaulting to a grouping
// by category.
func (h *SummaryHandler) Handler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	groupBy := strings.ToLower(r.URL.Query().Get("group_by"))
	result, err := h.summary.Summary(r.Context(), groupBy)
	if err != nil {
		if errors.Is(err, summary.ErrInvalidGroupBy) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

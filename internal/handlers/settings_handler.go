package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// SettingsHandler serves runtime settings
type SettingsHandler struct {
	settings interfaces.SettingsService
	logger   arbor.ILogger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings interfaces.SettingsService, logger arbor.ILogger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// Handler handles GET and PUT on /api/settings
func (h *SettingsHandler) Handler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		WriteJSON(w, http.StatusOK, h.settings.Snapshot())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var update models.SettingsUpdate
	if !DecodeJSON(w, r, &update) {
		return
	}

	current, err := h.settings.Update(r.Context(), update)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("reporting_currency", current.ReportingCurrency).
		Str("history_cache_path", current.HistoryCachePath).
		Msg("Settings updated")
	WriteJSON(w, http.StatusOK, current)
}

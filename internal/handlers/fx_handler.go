package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/services/fx"
)

// FxHandler serves stored exchange rates and the cross-rate matrix
type FxHandler struct {
	fxRates   interfaces.FxRateStorage
	accounts  interfaces.AccountStorage
	positions interfaces.PositionStorage
	settings  interfaces.SettingsService
	resolver  fx.Resolver
	logger    arbor.ILogger
}

// NewFxHandler creates a new FxHandler
func NewFxHandler(fxRates interfaces.FxRateStorage, accounts interfaces.AccountStorage, positions interfaces.PositionStorage, settings interfaces.SettingsService, resolver fx.Resolver, logger arbor.ILogger) *FxHandler {
	return &FxHandler{
		fxRates:   fxRates,
		accounts:  accounts,
		positions: positions,
		settings:  settings,
		resolver:  resolver,
		logger:    logger,
	}
}

// LatestHandler handles GET /api/fx, returning the most recent stored
// rate per pair.
func (h *FxHandler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	latest, err := h.fxRates.Latest(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, latest)
}

// MatrixHandler handles GET /api/fx/matrix. The matrix covers every
// currency in use across accounts, positions and the reporting currency;
// unresolvable pairs come back as null.
func (h *FxHandler) MatrixHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	accounts, err := h.accounts.GetAll(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	positions, err := h.positions.GetAll(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	currencies := []string{h.settings.ReportingCurrency(), h.resolver.Anchor}
	for _, account := range accounts {
		currencies = append(currencies, account.Currency)
	}
	for _, position := range positions {
		currencies = append(currencies, position.Currency)
	}

	latest, err := h.fxRates.Latest(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	matrix := h.resolver.Matrix(fx.SnapshotFromRates(latest), currencies)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reporting_currency": h.settings.ReportingCurrency(),
		"matrix":             matrix,
	})
}

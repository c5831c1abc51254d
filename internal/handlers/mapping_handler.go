package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
)

// MappingHandler serves symbol classification mappings. The same handler
// backs both industry and sector routes; kind selects the mapping set.
type MappingHandler struct {
	mappings interfaces.MappingStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(mappings interfaces.MappingStorage, logger arbor.ILogger) *MappingHandler {
	return &MappingHandler{
		mappings: mappings,
		validate: validator.New(),
		logger:   logger,
	}
}

type mappingRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Label  string `json:"label" validate:"required"`
}

// IndustryCollectionHandler handles GET (list) and POST (upsert) on
// /api/industry
func (h *MappingHandler) IndustryCollectionHandler(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, "industry")
}

// IndustryItemHandler handles DELETE on /api/industry/{symbol}
func (h *MappingHandler) IndustryItemHandler(w http.ResponseWriter, r *http.Request) {
	h.item(w, r, "industry", PathSuffix(r, "/api/industry/"))
}

// SectorCollectionHandler handles GET (list) and POST (upsert) on
// /api/sector
func (h *MappingHandler) SectorCollectionHandler(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, "sector")
}

// SectorItemHandler handles DELETE on /api/sector/{symbol}
func (h *MappingHandler) SectorItemHandler(w http.ResponseWriter, r *http.Request) {
	h.item(w, r, "sector", PathSuffix(r, "/api/sector/"))
}

func (h *MappingHandler) collection(w http.ResponseWriter, r *http.Request, kind string) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, kind)
	case http.MethodPost:
		h.upsert(w, r, kind)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MappingHandler) list(w http.ResponseWriter, r *http.Request, kind string) {
	var (
		mappings map[string]string
		err      error
	)
	if kind == "industry" {
		mappings, err = h.mappings.GetIndustries(r.Context())
	} else {
		mappings, err = h.mappings.GetSectors(r.Context())
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, mappings)
}

func (h *MappingHandler) upsert(w http.ResponseWriter, r *http.Request, kind string) {
	var req mappingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	if kind == "industry" {
		err = h.mappings.SetIndustry(r.Context(), req.Symbol, req.Label)
	} else {
		err = h.mappings.SetSector(r.Context(), req.Symbol, req.Label)
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().
		Str("kind", kind).
		Str("symbol", req.Symbol).
		Str("label", req.Label).
		Msg("Mapping saved")
	WriteSuccess(w, kind+" mapping saved")
}

func (h *MappingHandler) item(w http.ResponseWriter, r *http.Request, kind, symbol string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol required")
		return
	}

	var err error
	if kind == "industry" {
		err = h.mappings.DeleteIndustry(r.Context(), symbol)
	} else {
		err = h.mappings.DeleteSector(r.Context(), symbol)
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, kind+" mapping deleted")
}

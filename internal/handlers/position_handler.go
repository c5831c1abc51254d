package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// PositionHandler serves position CRUD endpoints
type PositionHandler struct {
	positions interfaces.PositionStorage
	accounts  interfaces.AccountStorage
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(positions interfaces.PositionStorage, accounts interfaces.AccountStorage, logger arbor.ILogger) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		accounts:  accounts,
		validate:  validator.New(),
		logger:    logger,
	}
}

type positionRequest struct {
	AccountID    string   `json:"account_id" validate:"required"`
	Symbol       string   `json:"symbol"`
	Category     string   `json:"category" validate:"required"`
	Quantity     float64  `json:"quantity"`
	CostPerShare float64  `json:"cost_per_share"`
	Currency     string   `json:"currency" validate:"required,len=3"`
	DateAdded    string   `json:"date_added"`
	YieldRate    *float64 `json:"yield_rate"`
}

// toPosition builds a position from the request, enforcing category
// invariants via Position.Validate.
func (req *positionRequest) toPosition(id string, now time.Time) (*models.Position, error) {
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	dateAdded := models.Day(now)
	if req.DateAdded != "" {
		parsed, err := time.Parse("2006-01-02", req.DateAdded)
		if err != nil {
			return nil, err
		}
		dateAdded = models.Day(parsed)
	}

	position := &models.Position{
		ID:           id,
		AccountID:    req.AccountID,
		Symbol:       strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Category:     category,
		Quantity:     req.Quantity,
		CostPerShare: req.CostPerShare,
		Currency:     strings.ToUpper(req.Currency),
		DateAdded:    dateAdded,
		YieldRate:    req.YieldRate,
		UpdatedAt:    now,
	}

	if err := position.Validate(); err != nil {
		return nil, err
	}
	return position, nil
}

// CollectionHandler handles GET (list) and POST (create) on /api/positions
func (h *PositionHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler handles GET/PUT/DELETE on /api/positions/{id}
func (h *PositionHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := PathSuffix(r, "/api/positions/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "position id required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PositionHandler) list(w http.ResponseWriter, r *http.Request) {
	var (
		positions []*models.Position
		err       error
	)

	switch {
	case r.URL.Query().Get("account_id") != "":
		positions, err = h.positions.GetByAccount(r.Context(), r.URL.Query().Get("account_id"))
	case r.URL.Query().Get("category") != "":
		var category models.Category
		category, err = models.ParseCategory(r.URL.Query().Get("category"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		positions, err = h.positions.GetByCategory(r.Context(), category)
	default:
		positions, err = h.positions.GetAll(r.Context())
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, positions)
}

func (h *PositionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Positions must belong to an existing account
	if _, err := h.accounts.Get(r.Context(), req.AccountID); err != nil {
		WriteError(w, http.StatusBadRequest, "unknown account: "+req.AccountID)
		return
	}

	now := time.Now().UTC()
	position, err := req.toPosition(common.NewPositionID(), now)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	position.CreatedAt = now

	if err := h.positions.Save(r.Context(), position); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().
		Str("position_id", position.ID).
		Str("symbol", position.Symbol).
		Str("category", string(position.Category)).
		Msg("Position created")
	WriteJSON(w, http.StatusCreated, position)
}

func (h *PositionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	position, err := h.positions.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, position)
}

func (h *PositionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.positions.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	var req positionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	position, err := req.toPosition(id, time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	position.CreatedAt = existing.CreatedAt

	if err := h.positions.Save(r.Context(), position); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, position)
}

func (h *PositionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.positions.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	h.logger.Info().Str("position_id", id).Msg("Position deleted")
	WriteSuccess(w, "position deleted")
}

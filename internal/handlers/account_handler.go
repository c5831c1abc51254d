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

// AccountHandler serves account CRUD endpoints
type AccountHandler struct {
	accounts  interfaces.AccountStorage
	positions interfaces.PositionStorage
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts interfaces.AccountStorage, positions interfaces.PositionStorage, logger arbor.ILogger) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		positions: positions,
		validate:  validator.New(),
		logger:    logger,
	}
}

type accountRequest struct {
	Name     string `json:"name" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// CollectionHandler handles GET (list) and POST (create) on /api/accounts
func (h *AccountHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler handles GET/PUT/DELETE on /api/accounts/{id}
func (h *AccountHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := PathSuffix(r, "/api/accounts/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "account id required")
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

func (h *AccountHandler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.GetAll(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:        common.NewAccountID(),
		Name:      req.Name,
		Currency:  strings.ToUpper(req.Currency),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.accounts.Save(r.Context(), account); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	WriteJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	var req accountRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	account.Name = req.Name
	account.Currency = strings.ToUpper(req.Currency)
	account.UpdatedAt = time.Now().UTC()

	if err := h.accounts.Save(r.Context(), account); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, account)
}

// delete removes the account and cascades to its positions
func (h *AccountHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}

	deleted, err := h.positions.DeleteByAccount(r.Context(), id)
	if err != nil {
		h.logger.Warn().Str("account_id", id).Err(err).Msg("Cascade position delete failed")
	}

	h.logger.Info().Str("account_id", id).Int("positions_deleted", deleted).Msg("Account deleted")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "success",
		"positions_deleted": deleted,
	})
}

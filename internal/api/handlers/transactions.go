package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/api/middleware"
	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/extract"
	"github.com/dvloznov/spendwise/internal/store"
)

// TransactionsHandler handles transaction CRUD and free-text parsing.
type TransactionsHandler struct {
	txStore store.TransactionStore
	engine  *extract.Engine
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(txStore store.TransactionStore, engine *extract.Engine, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		txStore: txStore,
		engine:  engine,
		log:     log,
	}
}

type transactionRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    *string `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	RawText     string  `json:"rawText"`
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not added")
		return
	}

	tx := &domain.Transaction{
		UserID:      userID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		RawText:     req.RawText,
	}
	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			date, err = time.Parse("2006-01-02", req.Date)
		}
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction not added")
			return
		}
		tx.Date = date
	}

	created, err := h.txStore.Insert(r.Context(), tx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not added")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Transaction added successfully",
		"transaction": created,
	})
}

// Parse handles POST /api/transactions/parse
// Extraction never fails from the client's point of view: degraded
// results carry a lower confidence instead of an error status.
func (h *TransactionsHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	parsed := h.engine.Extract(r.Context(), req.Text)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transaction parsed successfully",
		"parsed":  parsed,
	})
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	transactions, err := h.txStore.FindByOwner(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusBadRequest, "Transactions not found")
		return
	}

	message := "Transactions found successfully"
	if len(transactions) == 0 {
		message = "No transactions found - returning empty list"
		transactions = []*domain.Transaction{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      message,
		"transactions": transactions,
	})
}

// Update handles PUT /api/transactions/{id}
// Absent request fields keep their stored values.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	userID := middleware.UserID(r.Context())

	existing, err := h.txStore.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to load transaction")
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not updated")
		return
	}
	if existing.UserID != userID {
		middleware.WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req struct {
		Amount      *float64 `json:"amount"`
		Currency    *string  `json:"currency"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		Date        *string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not updated")
		return
	}

	patch := store.TransactionPatch{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			date, err = time.Parse("2006-01-02", *req.Date)
		}
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction not updated")
			return
		}
		patch.Date = &date
	}

	updated, err := h.txStore.Update(r.Context(), id, patch)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not updated")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Transaction updated successfully",
		"transaction": updated,
	})
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	userID := middleware.UserID(r.Context())

	existing, err := h.txStore.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to load transaction")
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not deleted")
		return
	}
	if existing.UserID != userID {
		middleware.WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := h.txStore.Delete(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusBadRequest, "Transaction not deleted")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transaction deleted successfully",
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sinuca-magalhaes/caixa/internal/auth"
	"github.com/sinuca-magalhaes/caixa/internal/domain"
	"github.com/sinuca-magalhaes/caixa/internal/service"
)

// TransactionHandler handles the ledger endpoints.
type TransactionHandler struct {
	txService *service.TransactionService
	logger    zerolog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txService *service.TransactionService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
		logger:    logger.With().Str("handler", "transaction").Logger(),
	}
}

type createTransactionRequest struct {
	Type        string           `json:"type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Responsible string           `json:"responsible"`
}

type transactionResponse struct {
	ID          int64       `json:"id"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Responsible string      `json:"responsible"`
	CreatedAt   time.Time   `json:"created_at"`
	OwnerID     int64       `json:"owner_id"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type.String(),
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      json.Number(tx.Amount.StringFixed(domain.AmountScale)),
		Responsible: tx.Responsible,
		CreatedAt:   tx.CreatedAt,
		OwnerID:     tx.OwnerID,
	}
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, mapError(err))
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validationError("request body must be a JSON transaction"))
		return
	}
	if req.Amount == nil {
		writeError(w, validationError("amount is required"))
		return
	}

	tx, err := h.txService.Create(r.Context(), user, service.CreateTransactionInput{
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Amount:      *req.Amount,
		Responsible: req.Responsible,
	})
	if err != nil {
		handleError(w, h.logger, err, "create transaction failed")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// List handles GET /transactions?date_from&date_to.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, mapError(err))
		return
	}

	period, err := periodFromQuery(r)
	if err != nil {
		handleError(w, h.logger, err, "invalid period")
		return
	}

	txs, err := h.txService.List(r.Context(), user, period)
	if err != nil {
		handleError(w, h.logger, err, "list transactions failed")
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, mapError(err))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, validationError("transaction id must be a positive integer"))
		return
	}

	if err := h.txService.Delete(r.Context(), user, id); err != nil {
		handleError(w, h.logger, err, "delete transaction failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

// periodFromQuery reads date_from and date_to (YYYY-MM-DD, both optional).
func periodFromQuery(r *http.Request) (domain.Period, error) {
	q := r.URL.Query()
	return domain.ParsePeriod(q.Get("date_from"), q.Get("date_to"))
}

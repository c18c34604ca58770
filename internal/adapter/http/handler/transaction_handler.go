package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marketcore/settlement/internal/adapter/http/dto"
	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

// SettlementService is the settlement surface the handler needs.
type SettlementService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	ConfirmTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	FailTransaction(ctx context.Context, id, reason string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	TransactionStats(ctx context.Context, userID string) (*domain.TransactionStats, error)
}

// TransactionHandler handles settlement transaction HTTP requests.
type TransactionHandler struct {
	settlementUC SettlementService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(settlementUC SettlementService) *TransactionHandler {
	return &TransactionHandler{settlementUC: settlementUC}
}

// Create opens a pending settlement transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.settlementUC.CreateTransaction(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Confirm settles a pending transaction. When settlement fails on
// insufficient buyer funds the transaction is returned in its FAILED
// state together with a 422.
func (h *TransactionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.settlementUC.ConfirmTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) && txn != nil {
			writeJSON(w, http.StatusUnprocessableEntity, dto.TransactionFromDomain(txn))
			return
		}

		status := mapDomainError(err)
		writeError(w, status, "failed to confirm transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Fail abandons a pending transaction with a reason.
func (h *TransactionHandler) Fail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.FailTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txn, err := h.settlementUC.FailTransaction(r.Context(), id, req.Reason)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to fail transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.settlementUC.GetTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List queries transactions with filters and pagination.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		Type:      domain.TransactionType(q.Get("type")),
		Status:    domain.TransactionStatus(q.Get("status")),
		UserID:    q.Get("user_id"),
		AssetID:   q.Get("asset_id"),
		Currency:  q.Get("currency"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      parseIntQuery(r, "page", 1),
		Limit:     parseIntQuery(r, "limit", 20),
	}

	transactions, total, err := h.settlementUC.ListTransactions(r.Context(), filter)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionListResponse{
		Transactions: dto.TransactionsFromDomain(transactions),
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
}

// Stats aggregates a user's completed transactions.
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	stats, err := h.settlementUC.TransactionStats(r.Context(), userID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction stats", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionStatsFromDomain(stats))
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marketcore/settlement/internal/adapter/http/dto"
	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

// BalanceService is the balance-movement surface the handler needs.
type BalanceService interface {
	AddBalance(ctx context.Context, input usecase.AddBalanceInput) error
	DeductBalance(ctx context.Context, input usecase.DeductBalanceInput) error
	Transfer(ctx context.Context, input usecase.TransferInput) error
	Withdraw(ctx context.Context, input usecase.WithdrawInput) error
	Deposit(ctx context.Context, input usecase.DepositInput) error
}

// JournalService is the journal surface the handler needs.
type JournalService interface {
	Append(ctx context.Context, input usecase.AppendRecordInput) (*domain.FinancialRecord, error)
	GetRecord(ctx context.Context, id string) (*domain.FinancialRecord, error)
	Query(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.FinancialRecord, int64, error)
	Stats(ctx context.Context, userID, currency string) (*domain.RecordStats, error)
}

// FinanceHandler handles balance-movement and journal HTTP requests.
type FinanceHandler struct {
	engine    BalanceService
	journalUC JournalService
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(engine BalanceService, journalUC JournalService) *FinanceHandler {
	return &FinanceHandler{
		engine:    engine,
		journalUC: journalUC,
	}
}

// AddBalance credits a user's default wallet.
func (h *FinanceHandler) AddBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.BalanceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.engine.AddBalance(r.Context(), req.ToAddInput()); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to add balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// DeductBalance debits a user across active wallets, largest balance first.
func (h *FinanceHandler) DeductBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.BalanceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.engine.DeductBalance(r.Context(), req.ToDeductInput()); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to deduct balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// Transfer moves funds between two users.
func (h *FinanceHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.engine.Transfer(r.Context(), req.ToUseCaseInput()); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "completed"})
}

// Withdraw debits a user and records the withdrawal destination.
func (h *FinanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.engine.Withdraw(r.Context(), req.ToUseCaseInput()); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to withdraw", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "completed"})
}

// Deposit credits a user from an external source.
func (h *FinanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.engine.Deposit(r.Context(), req.ToUseCaseInput()); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to deposit", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "completed"})
}

// AppendRecord writes a standalone journal marker.
func (h *FinanceHandler) AppendRecord(w http.ResponseWriter, r *http.Request) {
	var req dto.AppendRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.journalUC.Append(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to append record", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordFromDomain(record))
}

// GetRecord retrieves a journal entry by ID.
func (h *FinanceHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record ID", "")
		return
	}

	record, err := h.journalUC.GetRecord(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get record", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RecordFromDomain(record))
}

// ListRecords queries a user's journal with filters and pagination.
func (h *FinanceHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	q := r.URL.Query()
	filter := domain.RecordFilter{
		Type:      domain.RecordType(q.Get("type")),
		Category:  domain.RecordCategory(q.Get("category")),
		Currency:  q.Get("currency"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      parseIntQuery(r, "page", 1),
		Limit:     parseIntQuery(r, "limit", 20),
	}

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
			return
		}
		filter.EndDate = &t
	}

	records, total, err := h.journalUC.Query(r.Context(), userID, filter)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list records", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RecordListResponse{
		Records: dto.RecordsFromDomain(records),
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	})
}

// RecordStats aggregates a user's journal for one currency.
func (h *FinanceHandler) RecordStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		writeError(w, http.StatusBadRequest, "missing currency", "currency query parameter is required")
		return
	}

	stats, err := h.journalUC.Stats(r.Context(), userID, currency)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get record stats", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RecordStatsFromDomain(stats))
}

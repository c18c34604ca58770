package handler

import (
	"context"
	"net/http"

	"github.com/marketcore/settlement/internal/adapter/http/dto"
	"github.com/marketcore/settlement/internal/usecase"
)

// ReconciliationService runs the ledger consistency sweep.
type ReconciliationService interface {
	Check(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler exposes the ledger consistency sweep.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// Check compares every active wallet balance against its last journal
// entry and reports the mismatches.
func (h *ReconciliationHandler) Check(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconUC.Check(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to run reconciliation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResponse{
		CheckedAt:         report.CheckedAt,
		Consistent:        report.Consistent,
		MismatchedWallets: report.MismatchedWallets,
	})
}

package usecase

import (
	"context"
	"time"
)

// ReconciliationReport is the outcome of one ledger consistency sweep.
type ReconciliationReport struct {
	CheckedAt         time.Time
	MismatchedWallets []string
	Consistent        bool
}

// Reconciler cross-checks wallet balances against the journal: every
// active wallet's balance must equal the balanceAfter of its latest
// journal entry, or zero when it has none.
type Reconciler struct {
	reconRepo ReconciliationRepository
}

// NewReconciler creates a new Reconciler.
func NewReconciler(reconRepo ReconciliationRepository) *Reconciler {
	return &Reconciler{reconRepo: reconRepo}
}

// Check runs one sweep and reports any wallets whose balance drifted
// from the journal.
func (uc *Reconciler) Check(ctx context.Context) (*ReconciliationReport, error) {
	mismatched, err := uc.reconRepo.MismatchedWallets(ctx)
	if err != nil {
		return nil, err
	}

	return &ReconciliationReport{
		CheckedAt:         time.Now().UTC(),
		MismatchedWallets: mismatched,
		Consistent:        len(mismatched) == 0,
	}, nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconciliationRepository implements usecase.ReconciliationRepository.
type ReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewReconciliationRepository creates a new ReconciliationRepository.
func NewReconciliationRepository(pool *pgxpool.Pool) *ReconciliationRepository {
	return &ReconciliationRepository{pool: pool}
}

// MismatchedWallets returns ids of active wallets whose balance does
// not match the journal. The latest balance-carrying record per wallet
// is authoritative; a wallet with no such records must sit at zero.
func (r *ReconciliationRepository) MismatchedWallets(ctx context.Context) ([]string, error) {
	query := `
		SELECT w.id
		FROM wallets w
		LEFT JOIN LATERAL (
			SELECT balance_after
			FROM financial_records
			WHERE wallet_id = w.id AND balance_after IS NOT NULL
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) last ON TRUE
		WHERE w.status = 'active'
		  AND w.balance <> COALESCE(last.balance_after, 0)
		ORDER BY w.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

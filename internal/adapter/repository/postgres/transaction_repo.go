package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

const transactionColumns = `id, hash, order_id, asset_id, buyer_id, seller_id, currency,
	from_address, to_address, block_number, gas_used, memo, type, status,
	amount, fee, net_amount, created_at, updated_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a transaction within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		txn.ID,
		txn.Hash,
		txn.OrderID,
		txn.AssetID,
		txn.BuyerID,
		txn.SellerID,
		txn.Currency,
		txn.FromAddress,
		txn.ToAddress,
		txn.BlockNumber,
		txn.GasUsed,
		txn.Memo,
		string(txn.Type),
		string(txn.Status),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.Fee),
		decimalToNumeric(txn.NetAmount),
		timeToPgTimestamptz(txn.CreatedAt),
		timeToPgTimestamptz(txn.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a transaction with a FOR UPDATE lock, so
// two confirms of the same transaction serialize on the row.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	return scanTransaction(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// UpdateStatus flips the lifecycle status of a transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, memo string, updatedAt time.Time) error {
	query := `UPDATE transactions SET status = $2, memo = $3, updated_at = $4 WHERE id = $1`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, string(status), memo, timeToPgTimestamptz(updatedAt))

	return err
}

// List returns a filtered page of transactions plus the unpaged total.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	where := ` WHERE TRUE`
	var args []any

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(` AND (buyer_id = $%d OR seller_id = $%d)`, len(args), len(args))
	}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	if filter.AssetID != "" {
		args = append(args, filter.AssetID)
		where += fmt.Sprintf(` AND asset_id = $%d`, len(args))
	}

	if filter.Currency != "" {
		args = append(args, filter.Currency)
		where += fmt.Sprintf(` AND currency = $%d`, len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY ` + sortClause(filter.SortBy, filter.SortOrder)

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, (filter.Page-1)*filter.Limit)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, total, rows.Err()
}

// Stats aggregates a user's completed transactions: gross spent as
// buyer, net earned as seller, fees paid as buyer.
func (r *TransactionRepository) Stats(ctx context.Context, userID string) (*domain.TransactionStats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE buyer_id = $1), 0),
			COALESCE(SUM(net_amount) FILTER (WHERE seller_id = $1), 0),
			COALESCE(SUM(fee) FILTER (WHERE buyer_id = $1), 0),
			COUNT(*)
		FROM transactions
		WHERE (buyer_id = $1 OR seller_id = $1) AND status = 'completed'
	`

	var (
		purchased pgtype.Numeric
		earned    pgtype.Numeric
		fees      pgtype.Numeric
		total     int64
	)

	if err := r.pool.QueryRow(ctx, query, userID).Scan(&purchased, &earned, &fees, &total); err != nil {
		return nil, err
	}

	return &domain.TransactionStats{
		TotalPurchased:    numericToDecimal(purchased),
		TotalEarned:       numericToDecimal(earned),
		TotalFees:         numericToDecimal(fees),
		TotalTransactions: total,
	}, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		txnType   string
		status    string
		amount    pgtype.Numeric
		fee       pgtype.Numeric
		netAmount pgtype.Numeric
		created   pgtype.Timestamptz
		updated   pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.Hash,
		&txn.OrderID,
		&txn.AssetID,
		&txn.BuyerID,
		&txn.SellerID,
		&txn.Currency,
		&txn.FromAddress,
		&txn.ToAddress,
		&txn.BlockNumber,
		&txn.GasUsed,
		&txn.Memo,
		&txnType,
		&status,
		&amount,
		&fee,
		&netAmount,
		&created,
		&updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Type = domain.TransactionType(txnType)
	txn.Status = domain.TransactionStatus(status)
	txn.Amount = numericToDecimal(amount)
	txn.Fee = numericToDecimal(fee)
	txn.NetAmount = numericToDecimal(netAmount)
	txn.CreatedAt = created.Time
	txn.UpdatedAt = updated.Time

	return &txn, nil
}

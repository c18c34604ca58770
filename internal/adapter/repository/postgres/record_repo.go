package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

const recordColumns = `id, user_id, wallet_id, type, category, amount, currency,
	balance_before, balance_after, description, metadata, transaction_id, created_at`

// RecordRepository implements usecase.RecordRepository. The journal is
// append-only: there are no update or delete statements here.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// Create appends a record outside any caller-owned transaction.
func (r *RecordRepository) Create(ctx context.Context, record *domain.FinancialRecord) error {
	return insertRecord(ctx, r.pool, record)
}

// CreateTx appends a record within a transaction.
func (r *RecordRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.FinancialRecord) error {
	return insertRecord(ctx, tx.(*Tx).PgxTx(), record)
}

// GetByID retrieves a record by ID.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*domain.FinancialRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM financial_records WHERE id = $1`

	return scanRecord(r.pool.QueryRow(ctx, query, id))
}

// Query returns a filtered page of a user's records plus the unpaged
// total.
func (r *RecordRepository) Query(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.FinancialRecord, int64, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	if filter.Currency != "" {
		args = append(args, filter.Currency)
		where += fmt.Sprintf(` AND currency = $%d`, len(args))
	}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}

	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(` AND created_at <= $%d`, len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM financial_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordColumns + ` FROM financial_records` + where +
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

	var records []*domain.FinancialRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}

	return records, total, rows.Err()
}

// Stats aggregates a user's journal for one currency. Standalone
// markers (withdrawal/deposit requests, expected settlement flows) are
// excluded so totals reflect money that actually moved.
func (r *RecordRepository) Stats(ctx context.Context, userID, currency string) (*domain.RecordStats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type IN ('fee', 'commission')), 0),
			COUNT(*)
		FROM financial_records
		WHERE user_id = $1 AND currency = $2 AND balance_after IS NOT NULL
	`

	var (
		income  pgtype.Numeric
		expense pgtype.Numeric
		fees    pgtype.Numeric
		total   int64
	)

	if err := r.pool.QueryRow(ctx, query, userID, currency).Scan(&income, &expense, &fees, &total); err != nil {
		return nil, err
	}

	stats := &domain.RecordStats{
		TotalIncome:  numericToDecimal(income),
		TotalExpense: numericToDecimal(expense),
		TotalFees:    numericToDecimal(fees),
		TotalRecords: total,
	}
	stats.NetAmount = stats.TotalIncome.Sub(stats.TotalExpense)

	return stats, nil
}

func insertRecord(ctx context.Context, q querier, record *domain.FinancialRecord) error {
	var metadata []byte
	if record.Metadata != nil {
		var err error
		metadata, err = json.Marshal(record.Metadata)
		if err != nil {
			return err
		}
	}

	var walletID *string
	if record.WalletID != "" {
		walletID = &record.WalletID
	}

	query := `
		INSERT INTO financial_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := q.Exec(ctx, query,
		record.ID,
		record.UserID,
		walletID,
		string(record.Type),
		string(record.Category),
		decimalToNumeric(record.Amount),
		record.Currency,
		decimalPtrToNumeric(record.BalanceBefore),
		decimalPtrToNumeric(record.BalanceAfter),
		record.Description,
		metadata,
		record.TransactionID,
		timeToPgTimestamptz(record.CreatedAt),
	)

	return err
}

func scanRecord(row pgx.Row) (*domain.FinancialRecord, error) {
	var (
		record        domain.FinancialRecord
		walletID      *string
		recordType    string
		category      string
		amount        pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
		metadata      []byte
		created       pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.UserID,
		&walletID,
		&recordType,
		&category,
		&amount,
		&record.Currency,
		&balanceBefore,
		&balanceAfter,
		&record.Description,
		&metadata,
		&record.TransactionID,
		&created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if walletID != nil {
		record.WalletID = *walletID
	}
	record.Type = domain.RecordType(recordType)
	record.Category = domain.RecordCategory(category)
	record.Amount = numericToDecimal(amount)
	record.BalanceBefore = numericToDecimalPtr(balanceBefore)
	record.BalanceAfter = numericToDecimalPtr(balanceAfter)
	record.CreatedAt = created.Time

	if metadata != nil {
		_ = json.Unmarshal(metadata, &record.Metadata)
	}

	return &record, nil
}

// sortClause whitelists sortable columns; anything else falls back to
// created_at desc.
func sortClause(sortBy, sortOrder string) string {
	switch sortBy {
	case "created_at", "amount":
	default:
		sortBy = "created_at"
	}

	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	return sortBy + " " + sortOrder
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

const walletColumns = `id, user_id, address, currency, label, kind, status,
	balance, frozen_balance, version, is_default, created_at, updated_at`

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// Create inserts a wallet outside any caller-owned transaction.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	return insertWallet(ctx, r.pool, wallet)
}

// CreateTx inserts a wallet within a transaction.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	return insertWallet(ctx, tx.(*Tx).PgxTx(), wallet)
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	return scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	return scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// GetByAddress retrieves the wallet registered under (address, currency).
func (r *WalletRepository) GetByAddress(ctx context.Context, address, currency string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE address = $1 AND currency = $2`

	return scanWallet(r.pool.QueryRow(ctx, query, address, currency))
}

// GetDefaultForUpdate locks and returns the default wallet of
// (user, currency).
func (r *WalletRepository) GetDefaultForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) (*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1 AND currency = $2 AND is_default
		FOR UPDATE
	`

	return scanWallet(tx.(*Tx).PgxTx().QueryRow(ctx, query, userID, currency))
}

// ListActiveForUpdate locks every active wallet of (user, currency).
// Rows are locked in ascending id order so two units locking the same
// user's wallets always collide instead of deadlocking.
func (r *WalletRepository) ListActiveForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) ([]*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1 AND currency = $2 AND status = 'active'
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.(*Tx).PgxTx().Query(ctx, query, userID, currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWallets(rows)
}

// ListByUser lists a user's wallets, default first then newest first.
func (r *WalletRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWallets(rows)
}

// ClearDefault unsets the default flag on every wallet of (user, currency).
func (r *WalletRepository) ClearDefault(ctx context.Context, tx usecase.Transaction, userID, currency string) error {
	query := `UPDATE wallets SET is_default = FALSE WHERE user_id = $1 AND currency = $2 AND is_default`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, userID, currency)

	return err
}

// UpdateBalance updates the balance of a wallet.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE wallets
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query, id, decimalToNumeric(balance), timeToPgTimestamptz(updatedAt))

	return err
}

// Update persists the mutable wallet fields.
func (r *WalletRepository) Update(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	query := `
		UPDATE wallets
		SET label = $2, status = $3, is_default = $4, version = version + 1, updated_at = $5
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		wallet.ID,
		wallet.Label,
		string(wallet.Status),
		wallet.IsDefault,
		timeToPgTimestamptz(wallet.UpdatedAt),
	)

	return err
}

// SumActiveBalance sums the balances of a user's active wallets in one
// currency.
func (r *WalletRepository) SumActiveBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM wallets
		WHERE user_id = $1 AND currency = $2 AND status = 'active'
	`

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, userID, currency).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func insertWallet(ctx context.Context, q querier, wallet *domain.Wallet) error {
	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := q.Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Address,
		wallet.Currency,
		wallet.Label,
		string(wallet.Kind),
		string(wallet.Status),
		decimalToNumeric(wallet.Balance),
		decimalToNumeric(wallet.FrozenBalance),
		wallet.Version,
		wallet.IsDefault,
		timeToPgTimestamptz(wallet.CreatedAt),
		timeToPgTimestamptz(wallet.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateWallet
	}

	return err
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w       domain.Wallet
		balance pgtype.Numeric
		frozen  pgtype.Numeric
		kind    string
		status  string
		created pgtype.Timestamptz
		updated pgtype.Timestamptz
	)

	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.Address,
		&w.Currency,
		&w.Label,
		&kind,
		&status,
		&balance,
		&frozen,
		&w.Version,
		&w.IsDefault,
		&created,
		&updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	w.Kind = domain.WalletKind(kind)
	w.Status = domain.WalletStatus(status)
	w.Balance = numericToDecimal(balance)
	w.FrozenBalance = numericToDecimal(frozen)
	w.CreatedAt = created.Time
	w.UpdatedAt = updated.Time

	return &w, nil
}

func scanWallets(rows pgx.Rows) ([]*domain.Wallet, error) {
	var wallets []*domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}

	return wallets, rows.Err()
}

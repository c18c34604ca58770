package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	// GetByAddress returns the wallet with the given (address, currency)
	// pair, or ErrWalletNotFound.
	GetByAddress(ctx context.Context, address, currency string) (*domain.Wallet, error)
	// GetDefaultForUpdate locks and returns the default wallet of
	// (user, currency), or ErrWalletNotFound when none exists.
	GetDefaultForUpdate(ctx context.Context, tx Transaction, userID, currency string) (*domain.Wallet, error)
	// ListActiveForUpdate locks every active wallet of (user, currency)
	// in ascending wallet-id order and returns them.
	ListActiveForUpdate(ctx context.Context, tx Transaction, userID, currency string) ([]*domain.Wallet, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error)
	// ClearDefault unsets the default flag on every wallet of (user, currency).
	ClearDefault(ctx context.Context, tx Transaction, userID, currency string) error
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	Update(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	SumActiveBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error)
}

// RecordRepository defines data access for the append-only financial
// journal. Records are never updated or deleted.
type RecordRepository interface {
	Create(ctx context.Context, record *domain.FinancialRecord) error
	CreateTx(ctx context.Context, tx Transaction, record *domain.FinancialRecord) error
	GetByID(ctx context.Context, id string) (*domain.FinancialRecord, error)
	Query(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.FinancialRecord, int64, error)
	Stats(ctx context.Context, userID, currency string) (*domain.RecordStats, error)
}

// TransactionRepository defines data access for settlement transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, memo string, updatedAt time.Time) error
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	Stats(ctx context.Context, userID string) (*domain.TransactionStats, error)
}

// ReconciliationRepository defines ledger-wide consistency reads.
type ReconciliationRepository interface {
	// MismatchedWallets returns ids of active wallets whose balance does
	// not equal the last journal entry's balanceAfter (or zero when the
	// wallet has no balance-affecting entries).
	MismatchedWallets(ctx context.Context) ([]string, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction (one atomic unit).
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles atomic-unit lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on retryable infrastructure failures.
// The bounded retry policy is owned by whoever constructs the use
// cases, not by the use cases themselves.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations for hot balance reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

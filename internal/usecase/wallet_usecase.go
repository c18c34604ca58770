package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
)

// WalletLedger handles wallet management and balance reads.
type WalletLedger struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	users      UserDirectory
	idGen      IDGenerator
	cache      Cache
}

// NewWalletLedger creates a new WalletLedger. cache may be nil.
func NewWalletLedger(
	txManager TransactionManager,
	walletRepo WalletRepository,
	users UserDirectory,
	idGen IDGenerator,
	cache Cache,
) *WalletLedger {
	return &WalletLedger{
		txManager:  txManager,
		walletRepo: walletRepo,
		users:      users,
		idGen:      idGen,
		cache:      cache,
	}
}

// CreateWalletInput represents input for creating a wallet with an
// externally supplied address.
type CreateWalletInput struct {
	UserID    string
	Address   string
	Currency  string
	Kind      domain.WalletKind
	Label     string
	IsDefault bool
}

// CreateWallet registers a wallet. (address, currency) must be unique;
// setting the default flag clears it from every other wallet of the
// same user and currency in the same atomic unit.
func (uc *WalletLedger) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	if err := domain.ValidateAddress(input.Address); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	exists, err := uc.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	_, err = uc.walletRepo.GetByAddress(ctx, input.Address, input.Currency)
	if err == nil {
		return nil, domain.ErrDuplicateWallet
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.WalletKindExternal
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:            uc.idGen.Generate(),
		UserID:        input.UserID,
		Address:       input.Address,
		Currency:      input.Currency,
		Balance:       decimal.Zero,
		FrozenBalance: decimal.Zero,
		Kind:          kind,
		Status:        domain.WalletStatusActive,
		IsDefault:     input.IsDefault,
		Label:         input.Label,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if input.IsDefault {
		if err := uc.walletRepo.ClearDefault(ctx, tx, input.UserID, input.Currency); err != nil {
			return nil, err
		}
	}

	if err := uc.walletRepo.CreateTx(ctx, tx, wallet); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletLedger) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByID(ctx, id)
}

// ListWallets lists a user's wallets, default first then newest first.
func (uc *WalletLedger) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	return uc.walletRepo.ListByUser(ctx, userID)
}

// UpdateWalletInput is a patch for mutable wallet fields. Nil fields
// are left unchanged.
type UpdateWalletInput struct {
	Label     *string
	Status    *domain.WalletStatus
	IsDefault *bool
}

// UpdateWallet applies a patch to a wallet. Setting IsDefault true
// clears the flag from the user's other wallets of that currency
// inside the same atomic unit.
func (uc *WalletLedger) UpdateWallet(ctx context.Context, id string, input UpdateWalletInput) (*domain.Wallet, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	wallet, err := uc.walletRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if input.IsDefault != nil && *input.IsDefault && !wallet.IsDefault {
		if err := uc.walletRepo.ClearDefault(ctx, tx, wallet.UserID, wallet.Currency); err != nil {
			return nil, err
		}
	}

	if input.Label != nil {
		wallet.Label = *input.Label
	}

	if input.Status != nil {
		wallet.Status = *input.Status
	}

	if input.IsDefault != nil {
		wallet.IsDefault = *input.IsDefault
	}

	wallet.UpdatedAt = time.Now().UTC()

	if err := uc.walletRepo.Update(ctx, tx, wallet); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetBalance returns the sum of balances over the user's active wallets
// of the given currency. Reads go through the cache when one is wired.
func (uc *WalletLedger) GetBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	if err := domain.ValidateCurrency(currency); err != nil {
		return decimal.Zero, err
	}

	key := balanceCacheKey(userID, currency)

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, key); err == nil {
			if balance, perr := decimal.NewFromString(cached); perr == nil {
				return balance, nil
			}
		}
	}

	balance, err := uc.walletRepo.SumActiveBalance(ctx, userID, currency)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, key, balance.String(), BalanceCacheTTL)
	}

	return balance, nil
}

func balanceCacheKey(userID, currency string) string {
	return fmt.Sprintf("balance:%s:%s", userID, currency)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
)

// BalanceTransferEngine implements add/deduct/transfer on top of the
// wallet ledger and the financial journal. Every public operation runs
// as one atomic unit: either every wallet mutation and every journal
// entry commits, or none do.
type BalanceTransferEngine struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	recordRepo RecordRepository
	outboxRepo OutboxRepository
	users      UserDirectory
	idGen      IDGenerator
	cache      Cache
	retrier    Retrier
}

// NewBalanceTransferEngine creates a new BalanceTransferEngine.
// cache and retrier may be nil.
func NewBalanceTransferEngine(
	txManager TransactionManager,
	walletRepo WalletRepository,
	recordRepo RecordRepository,
	outboxRepo OutboxRepository,
	users UserDirectory,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
) *BalanceTransferEngine {
	return &BalanceTransferEngine{
		txManager:  txManager,
		walletRepo: walletRepo,
		recordRepo: recordRepo,
		outboxRepo: outboxRepo,
		users:      users,
		idGen:      idGen,
		cache:      cache,
		retrier:    retrier,
	}
}

// AddBalanceInput represents input for crediting a user.
type AddBalanceInput struct {
	TransactionID *string
	UserID        string
	Currency      string
	Description   string
	Category      domain.RecordCategory
	Amount        decimal.Decimal
}

// AddBalance credits the user's default wallet, creating it when the
// user has none for the currency, and appends one income record.
func (uc *BalanceTransferEngine) AddBalance(ctx context.Context, input AddBalanceInput) error {
	if err := uc.validateMovement(ctx, input.UserID, input.Amount, input.Currency); err != nil {
		return err
	}

	description := input.Description
	if description == "" {
		description = "balance addition"
	}

	err := uc.run(ctx, func(tx Transaction) error {
		_, err := uc.creditTx(ctx, tx, movement{
			UserID:        input.UserID,
			Amount:        input.Amount,
			Currency:      input.Currency,
			Description:   description,
			Category:      categoryOrTrading(input.Category),
			TransactionID: input.TransactionID,
		})
		if err != nil {
			return err
		}

		return uc.emit(ctx, tx, domain.AggregateTypeWallet, input.UserID, domain.EventTypeBalanceCredited, domain.BalanceMovedEvent{
			UserID:   input.UserID,
			Currency: input.Currency,
			Amount:   input.Amount.String(),
			Reason:   description,
		})
	})
	if err != nil {
		return err
	}

	uc.invalidateBalance(ctx, input.UserID, input.Currency)

	return nil
}

// DeductBalanceInput represents input for debiting a user.
type DeductBalanceInput struct {
	TransactionID *string
	UserID        string
	Currency      string
	Description   string
	Category      domain.RecordCategory
	Amount        decimal.Decimal
}

// DeductBalance debits the requested amount from the user's active
// wallets, consuming the largest balances first. Each touched wallet
// produces one expense record. Fails with ErrInsufficientBalance and no
// mutation when the aggregate balance is short.
func (uc *BalanceTransferEngine) DeductBalance(ctx context.Context, input DeductBalanceInput) error {
	if err := uc.validateMovement(ctx, input.UserID, input.Amount, input.Currency); err != nil {
		return err
	}

	description := input.Description
	if description == "" {
		description = "balance deduction"
	}

	err := uc.run(ctx, func(tx Transaction) error {
		err := uc.deductTx(ctx, tx, movement{
			UserID:        input.UserID,
			Amount:        input.Amount,
			Currency:      input.Currency,
			Description:   description,
			Category:      categoryOrTrading(input.Category),
			TransactionID: input.TransactionID,
		})
		if err != nil {
			return err
		}

		return uc.emit(ctx, tx, domain.AggregateTypeWallet, input.UserID, domain.EventTypeBalanceDebited, domain.BalanceMovedEvent{
			UserID:   input.UserID,
			Currency: input.Currency,
			Amount:   input.Amount.String(),
			Reason:   description,
		})
	})
	if err != nil {
		return err
	}

	uc.invalidateBalance(ctx, input.UserID, input.Currency)

	return nil
}

// TransferInput represents input for a cross-user transfer.
type TransferInput struct {
	FromUserID  string
	ToUserID    string
	Currency    string
	Description string
	Amount      decimal.Decimal
}

// Transfer debits the sender and credits the receiver in a single
// atomic unit. Wallet locks are acquired in ascending user-id order so
// concurrent opposite-direction transfers cannot deadlock.
func (uc *BalanceTransferEngine) Transfer(ctx context.Context, input TransferInput) error {
	if input.FromUserID == input.ToUserID {
		return domain.ErrSameUser
	}

	if err := uc.validateMovement(ctx, input.FromUserID, input.Amount, input.Currency); err != nil {
		return err
	}

	exists, err := uc.users.Exists(ctx, input.ToUserID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	err = uc.run(ctx, func(tx Transaction) error {
		order := []string{input.FromUserID, input.ToUserID}
		sort.Strings(order)

		for _, userID := range order {
			if userID == input.FromUserID {
				err := uc.deductTx(ctx, tx, movement{
					UserID:      input.FromUserID,
					Amount:      input.Amount,
					Currency:    input.Currency,
					Description: transferNote("transfer to user %s", input.ToUserID, input.Description),
					Category:    domain.CategoryTrading,
				})
				if err != nil {
					return err
				}

				continue
			}

			_, err := uc.creditTx(ctx, tx, movement{
				UserID:      input.ToUserID,
				Amount:      input.Amount,
				Currency:    input.Currency,
				Description: transferNote("transfer received from user %s", input.FromUserID, input.Description),
				Category:    domain.CategoryTrading,
			})
			if err != nil {
				return err
			}
		}

		return uc.emit(ctx, tx, domain.AggregateTypeWallet, input.FromUserID, domain.EventTypeTransferCompleted, domain.TransferCompletedEvent{
			FromUserID: input.FromUserID,
			ToUserID:   input.ToUserID,
			Currency:   input.Currency,
			Amount:     input.Amount.String(),
		})
	})
	if err != nil {
		return err
	}

	uc.invalidateBalance(ctx, input.FromUserID, input.Currency)
	uc.invalidateBalance(ctx, input.ToUserID, input.Currency)

	return nil
}

// WithdrawInput represents input for a withdrawal request.
type WithdrawInput struct {
	UserID      string
	Currency    string
	ToAddress   string
	Description string
	Amount      decimal.Decimal
}

// Withdraw debits the amount and appends a withdrawal marker carrying
// the destination address. The on-chain payout itself is an external
// collaborator's job.
func (uc *BalanceTransferEngine) Withdraw(ctx context.Context, input WithdrawInput) error {
	if err := domain.ValidateAddress(input.ToAddress); err != nil {
		return err
	}

	if err := uc.validateMovement(ctx, input.UserID, input.Amount, input.Currency); err != nil {
		return err
	}

	description := transferNote("withdraw to %s", input.ToAddress, input.Description)

	err := uc.run(ctx, func(tx Transaction) error {
		err := uc.deductTx(ctx, tx, movement{
			UserID:      input.UserID,
			Amount:      input.Amount,
			Currency:    input.Currency,
			Description: description,
			Category:    domain.CategoryTrading,
		})
		if err != nil {
			return err
		}

		marker := &domain.FinancialRecord{
			ID:          uc.idGen.Generate(),
			UserID:      input.UserID,
			Type:        domain.RecordTypeWithdrawal,
			Category:    domain.CategoryTrading,
			Amount:      input.Amount,
			Currency:    input.Currency,
			Description: description,
			Metadata:    map[string]any{"to_address": input.ToAddress},
			CreatedAt:   time.Now().UTC(),
		}

		if err := uc.recordRepo.CreateTx(ctx, tx, marker); err != nil {
			return err
		}

		return uc.emit(ctx, tx, domain.AggregateTypeWallet, input.UserID, domain.EventTypeWithdrawalRequested, domain.BalanceMovedEvent{
			UserID:   input.UserID,
			Currency: input.Currency,
			Amount:   input.Amount.String(),
			Reason:   description,
		})
	})
	if err != nil {
		return err
	}

	uc.invalidateBalance(ctx, input.UserID, input.Currency)

	return nil
}

// DepositInput represents input for recording an inbound deposit.
type DepositInput struct {
	UserID      string
	Currency    string
	FromAddress string
	TxHash      string
	Description string
	Amount      decimal.Decimal
}

// Deposit credits the default wallet and appends a deposit marker
// carrying the source address and external transaction hash.
func (uc *BalanceTransferEngine) Deposit(ctx context.Context, input DepositInput) error {
	if err := domain.ValidateAddress(input.FromAddress); err != nil {
		return err
	}

	if err := uc.validateMovement(ctx, input.UserID, input.Amount, input.Currency); err != nil {
		return err
	}

	description := transferNote("deposit from %s", input.FromAddress, input.Description)

	err := uc.run(ctx, func(tx Transaction) error {
		_, err := uc.creditTx(ctx, tx, movement{
			UserID:      input.UserID,
			Amount:      input.Amount,
			Currency:    input.Currency,
			Description: description,
			Category:    domain.CategoryTrading,
		})
		if err != nil {
			return err
		}

		marker := &domain.FinancialRecord{
			ID:          uc.idGen.Generate(),
			UserID:      input.UserID,
			Type:        domain.RecordTypeDeposit,
			Category:    domain.CategoryTrading,
			Amount:      input.Amount,
			Currency:    input.Currency,
			Description: description,
			Metadata:    map[string]any{"from_address": input.FromAddress, "tx_hash": input.TxHash},
			CreatedAt:   time.Now().UTC(),
		}

		if err := uc.recordRepo.CreateTx(ctx, tx, marker); err != nil {
			return err
		}

		return uc.emit(ctx, tx, domain.AggregateTypeWallet, input.UserID, domain.EventTypeDepositRecorded, domain.BalanceMovedEvent{
			UserID:   input.UserID,
			Currency: input.Currency,
			Amount:   input.Amount.String(),
			Reason:   description,
		})
	})
	if err != nil {
		return err
	}

	uc.invalidateBalance(ctx, input.UserID, input.Currency)

	return nil
}

// movement is a tx-scoped balance mutation request.
type movement struct {
	TransactionID *string
	UserID        string
	Currency      string
	Description   string
	Category      domain.RecordCategory
	Amount        decimal.Decimal
}

// creditTx increments the user's default wallet inside the caller's
// atomic unit, lazily creating a custodial default wallet, and appends
// the matching income record. An existing default wallet must be
// active to receive funds.
func (uc *BalanceTransferEngine) creditTx(ctx context.Context, tx Transaction, m movement) (*domain.Wallet, error) {
	now := time.Now().UTC()

	wallet, err := uc.walletRepo.GetDefaultForUpdate(ctx, tx, m.UserID, m.Currency)
	if errors.Is(err, domain.ErrWalletNotFound) {
		wallet = &domain.Wallet{
			ID:            uc.idGen.Generate(),
			UserID:        m.UserID,
			Address:       fmt.Sprintf("custodial_%s_%s", m.UserID, m.Currency),
			Currency:      m.Currency,
			Balance:       decimal.Zero,
			FrozenBalance: decimal.Zero,
			Kind:          domain.WalletKindCustodial,
			Status:        domain.WalletStatusActive,
			IsDefault:     true,
			Label:         "default",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uc.walletRepo.CreateTx(ctx, tx, wallet); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if !wallet.Active() {
		// Frozen or deactivated wallets keep their balance visible only
		// to administrators; crediting one would strand the funds.
		return nil, domain.ErrWalletNotActive
	}

	before := wallet.Balance
	after := wallet.ApplyCredit(m.Amount)

	if err := uc.walletRepo.UpdateBalance(ctx, tx, wallet.ID, after, now); err != nil {
		return nil, err
	}

	wallet.Balance = after
	wallet.Version++

	record := &domain.FinancialRecord{
		ID:            uc.idGen.Generate(),
		UserID:        m.UserID,
		WalletID:      wallet.ID,
		Type:          domain.RecordTypeIncome,
		Category:      m.Category,
		Amount:        m.Amount,
		Currency:      m.Currency,
		BalanceBefore: &before,
		BalanceAfter:  &after,
		Description:   m.Description,
		TransactionID: m.TransactionID,
		CreatedAt:     now,
	}

	if err := uc.recordRepo.CreateTx(ctx, tx, record); err != nil {
		return nil, err
	}

	return wallet, nil
}

// deductTx debits the user inside the caller's atomic unit using the
// greedy largest-first policy, appending one expense record per wallet
// touched. Wallet rows are locked in ascending id order before the
// in-memory sort so lock acquisition stays deterministic.
func (uc *BalanceTransferEngine) deductTx(ctx context.Context, tx Transaction, m movement) error {
	wallets, err := uc.walletRepo.ListActiveForUpdate(ctx, tx, m.UserID, m.Currency)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(w.Balance)
	}

	if total.LessThan(m.Amount) {
		return domain.ErrInsufficientBalance
	}

	// Largest balance first; ties broken by id to keep runs reproducible.
	sort.SliceStable(wallets, func(i, j int) bool {
		if !wallets[i].Balance.Equal(wallets[j].Balance) {
			return wallets[i].Balance.GreaterThan(wallets[j].Balance)
		}
		return wallets[i].ID < wallets[j].ID
	})

	now := time.Now().UTC()
	remaining := m.Amount

	for _, wallet := range wallets {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		take := decimal.Min(wallet.Balance, remaining)
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}

		before := wallet.Balance
		after := wallet.ApplyDebit(take)

		if err := uc.walletRepo.UpdateBalance(ctx, tx, wallet.ID, after, now); err != nil {
			return err
		}

		wallet.Balance = after
		wallet.Version++

		record := &domain.FinancialRecord{
			ID:            uc.idGen.Generate(),
			UserID:        m.UserID,
			WalletID:      wallet.ID,
			Type:          domain.RecordTypeExpense,
			Category:      m.Category,
			Amount:        take,
			Currency:      m.Currency,
			BalanceBefore: &before,
			BalanceAfter:  &after,
			Description:   m.Description,
			TransactionID: m.TransactionID,
			CreatedAt:     now,
		}

		if err := uc.recordRepo.CreateTx(ctx, tx, record); err != nil {
			return err
		}

		remaining = remaining.Sub(take)
	}

	return nil
}

// run executes op inside one atomic unit, routed through the injected
// retry policy when one is present.
func (uc *BalanceTransferEngine) run(ctx context.Context, op func(tx Transaction) error) error {
	attempt := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := op(tx); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInternal, err)
		}

		return nil
	}

	if uc.retrier == nil {
		return attempt()
	}

	return uc.retrier.Retry(ctx, attempt)
}

func (uc *BalanceTransferEngine) emit(ctx context.Context, tx Transaction, aggregateType, aggregateID, eventType string, payload any) error {
	if uc.outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       domain.MarshalPayload(payload),
		CreatedAt:     time.Now().UTC(),
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *BalanceTransferEngine) validateMovement(ctx context.Context, userID string, amount decimal.Decimal, currency string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	if err := domain.ValidateCurrency(currency); err != nil {
		return err
	}

	exists, err := uc.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	return nil
}

func (uc *BalanceTransferEngine) invalidateBalance(ctx context.Context, userID, currency string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(userID, currency))
}

func categoryOrTrading(c domain.RecordCategory) domain.RecordCategory {
	if c == "" {
		return domain.CategoryTrading
	}
	return c
}

func transferNote(format, arg, extra string) string {
	note := fmt.Sprintf(format, arg)
	if extra != "" {
		note = note + ": " + extra
	}
	return note
}

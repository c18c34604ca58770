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

// SettlementProcessor drives the transaction lifecycle. Creation posts
// the transaction plus its expected journal flows in one atomic unit;
// confirmation moves the funds and flips the status in another. The
// platform user collects the fee on every confirmed settlement.
type SettlementProcessor struct {
	txManager       TransactionManager
	transactionRepo TransactionRepository
	recordRepo      RecordRepository
	outboxRepo      OutboxRepository
	engine          *BalanceTransferEngine
	users           UserDirectory
	idGen           IDGenerator
	retrier         Retrier
	platformUserID  string
}

// NewSettlementProcessor creates a new SettlementProcessor.
// retrier may be nil.
func NewSettlementProcessor(
	txManager TransactionManager,
	transactionRepo TransactionRepository,
	recordRepo RecordRepository,
	outboxRepo OutboxRepository,
	engine *BalanceTransferEngine,
	users UserDirectory,
	idGen IDGenerator,
	retrier Retrier,
	platformUserID string,
) *SettlementProcessor {
	return &SettlementProcessor{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		recordRepo:      recordRepo,
		outboxRepo:      outboxRepo,
		engine:          engine,
		users:           users,
		idGen:           idGen,
		retrier:         retrier,
		platformUserID:  platformUserID,
	}
}

// CreateTransactionInput represents input for opening a settlement.
type CreateTransactionInput struct {
	OrderID     *string
	BlockNumber *int64
	GasUsed     *int64
	Hash        string
	AssetID     string
	BuyerID     string
	SellerID    string
	Currency    string
	FromAddress string
	ToAddress   string
	Memo        string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Fee         decimal.Decimal
}

// CreateTransaction records a PENDING settlement together with the
// journal entries describing the expected flow of funds: the buyer's
// outgoing amount, the seller's incoming net and the platform's fee.
// No balance moves until Confirm.
func (uc *SettlementProcessor) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if input.BuyerID == input.SellerID {
		return nil, domain.ErrSameUser
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	for _, userID := range []string{input.BuyerID, input.SellerID} {
		exists, err := uc.users.Exists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrUserNotFound
		}
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		Hash:        input.Hash,
		OrderID:     input.OrderID,
		AssetID:     input.AssetID,
		BuyerID:     input.BuyerID,
		SellerID:    input.SellerID,
		Currency:    input.Currency,
		FromAddress: input.FromAddress,
		ToAddress:   input.ToAddress,
		BlockNumber: input.BlockNumber,
		GasUsed:     input.GasUsed,
		Memo:        input.Memo,
		Type:        input.Type,
		Status:      domain.TransactionStatusPending,
		Amount:      input.Amount,
		Fee:         input.Fee,
		NetAmount:   input.Amount.Sub(input.Fee),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	for _, expected := range uc.expectedFlows(txn, now) {
		if err := uc.recordRepo.CreateTx(ctx, tx, expected); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}

	return txn, nil
}

// ConfirmTransaction settles a PENDING transaction: the buyer is
// debited the gross amount, the seller credited the net and the
// platform credited the fee, then the status flips to COMPLETED, all in
// one atomic unit. A business failure (insufficient buyer balance)
// marks the transaction FAILED in a compensating unit and is returned
// to the caller.
func (uc *SettlementProcessor) ConfirmTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var txn *domain.Transaction

	op := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		txn, err = uc.transactionRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if !txn.Pending() {
			return domain.ErrInvalidState
		}

		if err := uc.settleTx(ctx, tx, txn); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := uc.transactionRepo.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusCompleted, txn.Memo, now); err != nil {
			return err
		}

		if err := uc.emit(ctx, tx, txn, domain.EventTypeSettlementCompleted, ""); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInternal, err)
		}

		txn.Status = domain.TransactionStatusCompleted
		txn.UpdatedAt = now

		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}

	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			if failed, ferr := uc.markFailed(ctx, id, "insufficient balance"); ferr == nil {
				return failed, err
			}
		}
		return nil, err
	}

	uc.engine.invalidateBalance(ctx, txn.BuyerID, txn.Currency)
	uc.engine.invalidateBalance(ctx, txn.SellerID, txn.Currency)
	uc.engine.invalidateBalance(ctx, uc.platformUserID, txn.Currency)

	return txn, nil
}

// FailTransaction marks a PENDING transaction FAILED with a reason.
// No balances move.
func (uc *SettlementProcessor) FailTransaction(ctx context.Context, id, reason string) (*domain.Transaction, error) {
	return uc.markFailed(ctx, id, reason)
}

// GetTransaction retrieves a transaction by ID.
func (uc *SettlementProcessor) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactions returns a filtered page of transactions plus the
// unpaged total.
func (uc *SettlementProcessor) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, 0, domain.ErrInvalidTransactionType
	}

	filter.Page, filter.Limit = domain.ValidatePagination(filter.Page, filter.Limit)

	if filter.SortBy == "" {
		filter.SortBy = "created_at"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	return uc.transactionRepo.List(ctx, filter)
}

// TransactionStats aggregates a user's completed transactions.
func (uc *SettlementProcessor) TransactionStats(ctx context.Context, userID string) (*domain.TransactionStats, error) {
	return uc.transactionRepo.Stats(ctx, userID)
}

// settleTx moves the funds of one transaction inside the caller's
// atomic unit. Participants are processed in ascending user-id order so
// concurrent settlements sharing users cannot deadlock.
func (uc *SettlementProcessor) settleTx(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	category := txn.Type.Category()

	type flow struct {
		credit bool
		m      movement
	}

	flows := []flow{
		{credit: false, m: movement{
			UserID:        txn.BuyerID,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
			Description:   "purchase of asset " + txn.AssetID,
			Category:      category,
			TransactionID: &txn.ID,
		}},
		{credit: true, m: movement{
			UserID:        txn.SellerID,
			Amount:        txn.NetAmount,
			Currency:      txn.Currency,
			Description:   "sale of asset " + txn.AssetID,
			Category:      category,
			TransactionID: &txn.ID,
		}},
	}

	if txn.Fee.IsPositive() && uc.platformUserID != "" {
		flows = append(flows, flow{credit: true, m: movement{
			UserID:        uc.platformUserID,
			Amount:        txn.Fee,
			Currency:      txn.Currency,
			Description:   "platform fee for asset " + txn.AssetID,
			Category:      domain.CategoryPlatformFee,
			TransactionID: &txn.ID,
		}})
	}

	// The platform may itself be the buyer or the seller, so a user can
	// own more than one flow. Stable-sorting by user id keeps the lock
	// order deterministic while posting every flow.
	sort.SliceStable(flows, func(i, j int) bool {
		return flows[i].m.UserID < flows[j].m.UserID
	})

	for _, f := range flows {
		if f.credit {
			if _, err := uc.engine.creditTx(ctx, tx, f.m); err != nil {
				return err
			}
			continue
		}
		if err := uc.engine.deductTx(ctx, tx, f.m); err != nil {
			return err
		}
	}

	return nil
}

// expectedFlows builds the balance-free journal entries posted at
// creation time, describing how funds will move once confirmed.
func (uc *SettlementProcessor) expectedFlows(txn *domain.Transaction, now time.Time) []*domain.FinancialRecord {
	category := txn.Type.Category()
	meta := map[string]any{"stage": "expected"}

	records := []*domain.FinancialRecord{
		{
			ID:            uc.idGen.Generate(),
			UserID:        txn.BuyerID,
			Type:          domain.RecordTypeExpense,
			Category:      category,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
			Description:   "pending purchase of asset " + txn.AssetID,
			Metadata:      meta,
			TransactionID: &txn.ID,
			CreatedAt:     now,
		},
		{
			ID:            uc.idGen.Generate(),
			UserID:        txn.SellerID,
			Type:          domain.RecordTypeIncome,
			Category:      category,
			Amount:        txn.NetAmount,
			Currency:      txn.Currency,
			Description:   "pending sale of asset " + txn.AssetID,
			Metadata:      meta,
			TransactionID: &txn.ID,
			CreatedAt:     now,
		},
	}

	if txn.Fee.IsPositive() && uc.platformUserID != "" {
		records = append(records, &domain.FinancialRecord{
			ID:            uc.idGen.Generate(),
			UserID:        uc.platformUserID,
			Type:          domain.RecordTypeFee,
			Category:      domain.CategoryPlatformFee,
			Amount:        txn.Fee,
			Currency:      txn.Currency,
			Description:   "pending platform fee for asset " + txn.AssetID,
			Metadata:      meta,
			TransactionID: &txn.ID,
			CreatedAt:     now,
		})
	}

	return records
}

func (uc *SettlementProcessor) markFailed(ctx context.Context, id, reason string) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.transactionRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !txn.Pending() {
		return nil, domain.ErrInvalidState
	}

	memo := reason
	if txn.Memo != "" {
		memo = txn.Memo + "; " + reason
	}

	now := time.Now().UTC()
	if err := uc.transactionRepo.UpdateStatus(ctx, tx, txn.ID, domain.TransactionStatusFailed, memo, now); err != nil {
		return nil, err
	}

	if err := uc.emit(ctx, tx, txn, domain.EventTypeSettlementFailed, reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}

	txn.Status = domain.TransactionStatusFailed
	txn.Memo = memo
	txn.UpdatedAt = now

	return txn, nil
}

func (uc *SettlementProcessor) emit(ctx context.Context, tx Transaction, txn *domain.Transaction, eventType, reason string) error {
	if uc.outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   txn.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     eventType,
		Payload: domain.MarshalPayload(domain.SettlementEvent{
			TransactionID: txn.ID,
			BuyerID:       txn.BuyerID,
			SellerID:      txn.SellerID,
			Currency:      txn.Currency,
			Amount:        txn.Amount.String(),
			Fee:           txn.Fee.String(),
			NetAmount:     txn.NetAmount.String(),
			Reason:        reason,
		}),
		CreatedAt: time.Now().UTC(),
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

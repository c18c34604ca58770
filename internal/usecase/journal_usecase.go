package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
)

// Journal exposes the append-only financial journal: standalone audit
// markers go in through Append, reads go through Query and Stats.
// Balance-affecting entries are written by the balance engine and the
// settlement processor, never here.
type Journal struct {
	recordRepo RecordRepository
	users      UserDirectory
	idGen      IDGenerator
}

// NewJournal creates a new Journal.
func NewJournal(recordRepo RecordRepository, users UserDirectory, idGen IDGenerator) *Journal {
	return &Journal{
		recordRepo: recordRepo,
		users:      users,
		idGen:      idGen,
	}
}

// AppendRecordInput represents input for a standalone journal marker.
type AppendRecordInput struct {
	TransactionID *string
	Metadata      map[string]any
	UserID        string
	Currency      string
	Description   string
	Type          domain.RecordType
	Category      domain.RecordCategory
	Amount        decimal.Decimal
}

// Append writes a standalone marker record. The record carries no
// balance snapshot because it does not mutate any wallet.
func (uc *Journal) Append(ctx context.Context, input AppendRecordInput) (*domain.FinancialRecord, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	exists, err := uc.users.Exists(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	record := &domain.FinancialRecord{
		ID:            uc.idGen.Generate(),
		UserID:        input.UserID,
		Type:          input.Type,
		Category:      input.Category,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Description:   input.Description,
		Metadata:      input.Metadata,
		TransactionID: input.TransactionID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := uc.recordRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// GetRecord retrieves one journal entry by ID.
func (uc *Journal) GetRecord(ctx context.Context, id string) (*domain.FinancialRecord, error) {
	return uc.recordRepo.GetByID(ctx, id)
}

// Query returns a page of a user's journal plus the unpaged total.
// Pagination is clamped, sort defaults to newest first.
func (uc *Journal) Query(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.FinancialRecord, int64, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, 0, domain.ErrInvalidRecord
	}

	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, domain.ErrInvalidRecord
	}

	filter.Page, filter.Limit = domain.ValidatePagination(filter.Page, filter.Limit)

	if filter.SortBy == "" {
		filter.SortBy = "created_at"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	return uc.recordRepo.Query(ctx, userID, filter)
}

// Stats aggregates a user's journal for one currency.
func (uc *Journal) Stats(ctx context.Context, userID, currency string) (*domain.RecordStats, error) {
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	return uc.recordRepo.Stats(ctx, userID, currency)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordType classifies the direction/purpose of a financial record.
type RecordType string

const (
	RecordTypeIncome     RecordType = "income"
	RecordTypeExpense    RecordType = "expense"
	RecordTypeFee        RecordType = "fee"
	RecordTypeCommission RecordType = "commission"
	RecordTypeRefund     RecordType = "refund"
	RecordTypeWithdrawal RecordType = "withdrawal"
	RecordTypeDeposit    RecordType = "deposit"
)

var validRecordTypes = map[RecordType]bool{
	RecordTypeIncome:     true,
	RecordTypeExpense:    true,
	RecordTypeFee:        true,
	RecordTypeCommission: true,
	RecordTypeRefund:     true,
	RecordTypeWithdrawal: true,
	RecordTypeDeposit:    true,
}

// IsValid checks if the record type is known.
func (t RecordType) IsValid() bool {
	return validRecordTypes[t]
}

// RecordCategory groups records by business activity.
type RecordCategory string

const (
	CategoryTrading     RecordCategory = "trading"
	CategoryRental      RecordCategory = "rental"
	CategoryPlatformFee RecordCategory = "platform_fee"
	CategoryGasFee      RecordCategory = "gas_fee"
	CategoryRoyalty     RecordCategory = "royalty"
	CategoryReward      RecordCategory = "reward"
	CategoryPenalty     RecordCategory = "penalty"
)

var validCategories = map[RecordCategory]bool{
	CategoryTrading:     true,
	CategoryRental:      true,
	CategoryPlatformFee: true,
	CategoryGasFee:      true,
	CategoryRoyalty:     true,
	CategoryReward:      true,
	CategoryPenalty:     true,
}

// IsValid checks if the category is known.
func (c RecordCategory) IsValid() bool {
	return validCategories[c]
}

// FinancialRecord is one immutable audit-journal entry. Records created
// as a side effect of a wallet mutation carry the wallet's balance
// before and after; standalone audit markers (withdrawal/deposit
// requests, platform fee postings, expected settlement flows) leave the
// balance fields nil.
type FinancialRecord struct {
	CreatedAt     time.Time
	BalanceBefore *decimal.Decimal
	BalanceAfter  *decimal.Decimal
	Metadata      map[string]any
	TransactionID *string
	ID            string
	UserID        string
	WalletID      string
	Currency      string
	Description   string
	Type          RecordType
	Category      RecordCategory
	Amount        decimal.Decimal
}

// Validate checks the record invariants: positive amount and, when the
// record mutated a wallet, balanceAfter = balanceBefore +/- amount with
// the sign implied by the record type.
func (r *FinancialRecord) Validate() error {
	if !r.Type.IsValid() || !r.Category.IsValid() {
		return ErrInvalidRecord
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if r.BalanceBefore == nil && r.BalanceAfter == nil {
		return nil
	}

	if r.BalanceBefore == nil || r.BalanceAfter == nil {
		return ErrInvalidRecord
	}

	delta := r.BalanceAfter.Sub(*r.BalanceBefore)
	if !delta.Abs().Equal(r.Amount) {
		return ErrInvalidRecord
	}

	return nil
}

// RecordStats aggregates a user's journal.
type RecordStats struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	TotalFees    decimal.Decimal
	NetAmount    decimal.Decimal
	TotalRecords int64
}

// RecordFilter defines filters for querying financial records.
type RecordFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      RecordType
	Category  RecordCategory
	Currency  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

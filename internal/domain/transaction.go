package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies what kind of settlement a transaction
// represents.
type TransactionType string

const (
	TransactionTypePurchase      TransactionType = "purchase"
	TransactionTypeSale          TransactionType = "sale"
	TransactionTypeRental        TransactionType = "rental"
	TransactionTypeRentalPayment TransactionType = "rental_payment"
)

var validTransactionTypes = map[TransactionType]bool{
	TransactionTypePurchase:      true,
	TransactionTypeSale:          true,
	TransactionTypeRental:        true,
	TransactionTypeRentalPayment: true,
}

// IsValid checks if the transaction type is known.
func (t TransactionType) IsValid() bool {
	return validTransactionTypes[t]
}

// Category returns the journal category settlement records of this
// transaction type are filed under.
func (t TransactionType) Category() RecordCategory {
	if t == TransactionTypeRental || t == TransactionTypeRentalPayment {
		return CategoryRental
	}
	return CategoryTrading
}

// TransactionStatus is the lifecycle state of a transaction.
// PENDING is the only non-terminal state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction represents one settlement unit between a buyer and a
// seller, optionally linked to an order.
type Transaction struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	OrderID     *string
	BlockNumber *int64
	GasUsed     *int64
	ID          string
	Hash        string
	Currency    string
	FromAddress string
	ToAddress   string
	AssetID     string
	BuyerID     string
	SellerID    string
	Memo        string
	Type        TransactionType
	Status      TransactionStatus
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	NetAmount   decimal.Decimal
}

// Validate checks creation invariants: known type, positive amount,
// non-negative fee and netAmount = amount - fee > 0.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) || t.Fee.IsNegative() {
		return ErrInvalidAmount
	}

	if t.NetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !t.NetAmount.Equal(t.Amount.Sub(t.Fee)) {
		return ErrInvalidAmount
	}

	return nil
}

// Pending reports whether the transaction can still transition.
func (t *Transaction) Pending() bool {
	return t.Status == TransactionStatusPending
}

// TransactionStats aggregates a user's completed transactions.
type TransactionStats struct {
	TotalPurchased    decimal.Decimal
	TotalEarned       decimal.Decimal
	TotalFees         decimal.Decimal
	TotalTransactions int64
}

// TransactionFilter defines filters for listing transactions.
type TransactionFilter struct {
	Type      TransactionType
	Status    TransactionStatus
	UserID    string
	AssetID   string
	Currency  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

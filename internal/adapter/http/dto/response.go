package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Address       string          `json:"address"`
	Currency      string          `json:"currency"`
	Label         string          `json:"label,omitempty"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	FrozenBalance decimal.Decimal `json:"frozen_balance"`
	Version       int64           `json:"version"`
	IsDefault     bool            `json:"is_default"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:            w.ID,
		UserID:        w.UserID,
		Address:       w.Address,
		Currency:      w.Currency,
		Label:         w.Label,
		Kind:          string(w.Kind),
		Status:        string(w.Status),
		Balance:       w.Balance,
		FrozenBalance: w.FrozenBalance,
		Version:       w.Version,
		IsDefault:     w.IsDefault,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// BalanceResponse represents an aggregate balance.
type BalanceResponse struct {
	UserID   string          `json:"user_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// RecordResponse represents a journal entry in API responses.
type RecordResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	WalletID      string           `json:"wallet_id,omitempty"`
	Type          string           `json:"type"`
	Category      string           `json:"category"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	BalanceBefore *decimal.Decimal `json:"balance_before,omitempty"`
	BalanceAfter  *decimal.Decimal `json:"balance_after,omitempty"`
	Description   string           `json:"description,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	TransactionID *string          `json:"transaction_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RecordFromDomain converts a domain record to a response.
func RecordFromDomain(r *domain.FinancialRecord) *RecordResponse {
	return &RecordResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		WalletID:      r.WalletID,
		Type:          string(r.Type),
		Category:      string(r.Category),
		Amount:        r.Amount,
		Currency:      r.Currency,
		BalanceBefore: r.BalanceBefore,
		BalanceAfter:  r.BalanceAfter,
		Description:   r.Description,
		Metadata:      r.Metadata,
		TransactionID: r.TransactionID,
		CreatedAt:     r.CreatedAt,
	}
}

// RecordsFromDomain converts domain records to responses.
func RecordsFromDomain(records []*domain.FinancialRecord) []*RecordResponse {
	result := make([]*RecordResponse, len(records))
	for i, r := range records {
		result[i] = RecordFromDomain(r)
	}
	return result
}

// RecordListResponse is a paged journal query result.
type RecordListResponse struct {
	Records []*RecordResponse `json:"records"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
}

// RecordStatsResponse aggregates a user's journal.
type RecordStatsResponse struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalFees    decimal.Decimal `json:"total_fees"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	TotalRecords int64           `json:"total_records"`
}

// RecordStatsFromDomain converts domain stats to a response.
func RecordStatsFromDomain(s *domain.RecordStats) *RecordStatsResponse {
	return &RecordStatsResponse{
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		TotalFees:    s.TotalFees,
		NetAmount:    s.NetAmount,
		TotalRecords: s.TotalRecords,
	}
}

// TransactionResponse represents a settlement in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Hash        string          `json:"hash,omitempty"`
	OrderID     *string         `json:"order_id,omitempty"`
	AssetID     string          `json:"asset_id"`
	BuyerID     string          `json:"buyer_id"`
	SellerID    string          `json:"seller_id"`
	Currency    string          `json:"currency"`
	FromAddress string          `json:"from_address,omitempty"`
	ToAddress   string          `json:"to_address,omitempty"`
	BlockNumber *int64          `json:"block_number,omitempty"`
	GasUsed     *int64          `json:"gas_used,omitempty"`
	Memo        string          `json:"memo,omitempty"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		Hash:        t.Hash,
		OrderID:     t.OrderID,
		AssetID:     t.AssetID,
		BuyerID:     t.BuyerID,
		SellerID:    t.SellerID,
		Currency:    t.Currency,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		BlockNumber: t.BlockNumber,
		GasUsed:     t.GasUsed,
		Memo:        t.Memo,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Amount:      t.Amount,
		Fee:         t.Fee,
		NetAmount:   t.NetAmount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransactionListResponse is a paged transaction listing.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	Page         int                    `json:"page"`
	Limit        int                    `json:"limit"`
}

// TransactionStatsResponse aggregates a user's completed transactions.
type TransactionStatsResponse struct {
	TotalPurchased    decimal.Decimal `json:"total_purchased"`
	TotalEarned       decimal.Decimal `json:"total_earned"`
	TotalFees         decimal.Decimal `json:"total_fees"`
	TotalTransactions int64           `json:"total_transactions"`
}

// TransactionStatsFromDomain converts domain stats to a response.
func TransactionStatsFromDomain(s *domain.TransactionStats) *TransactionStatsResponse {
	return &TransactionStatsResponse{
		TotalPurchased:    s.TotalPurchased,
		TotalEarned:       s.TotalEarned,
		TotalFees:         s.TotalFees,
		TotalTransactions: s.TotalTransactions,
	}
}

// ReconciliationResponse reports a ledger consistency sweep.
type ReconciliationResponse struct {
	CheckedAt         time.Time `json:"checked_at"`
	Consistent        bool      `json:"consistent"`
	MismatchedWallets []string  `json:"mismatched_wallets,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package dto

import (
	"github.com/shopspring/decimal"

	"github.com/marketcore/settlement/internal/domain"
	"github.com/marketcore/settlement/internal/usecase"
)

// CreateWalletRequest represents a request to register a wallet.
type CreateWalletRequest struct {
	UserID    string `json:"user_id"`
	Address   string `json:"address"`
	Currency  string `json:"currency"`
	Kind      string `json:"kind,omitempty"`
	Label     string `json:"label,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput() usecase.CreateWalletInput {
	return usecase.CreateWalletInput{
		UserID:    r.UserID,
		Address:   r.Address,
		Currency:  r.Currency,
		Kind:      domain.WalletKind(r.Kind),
		Label:     r.Label,
		IsDefault: r.IsDefault,
	}
}

// UpdateWalletRequest is a patch for mutable wallet fields.
type UpdateWalletRequest struct {
	Label     *string `json:"label,omitempty"`
	Status    *string `json:"status,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateWalletRequest) ToUseCaseInput() usecase.UpdateWalletInput {
	input := usecase.UpdateWalletInput{
		Label:     r.Label,
		IsDefault: r.IsDefault,
	}
	if r.Status != nil {
		status := domain.WalletStatus(*r.Status)
		input.Status = &status
	}
	return input
}

// BalanceChangeRequest represents a request to credit or debit a user.
type BalanceChangeRequest struct {
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category,omitempty"`
	TransactionID *string         `json:"transaction_id,omitempty"`
}

// ToAddInput converts to the credit use case input.
func (r *BalanceChangeRequest) ToAddInput() usecase.AddBalanceInput {
	return usecase.AddBalanceInput{
		UserID:        r.UserID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Description:   r.Description,
		Category:      domain.RecordCategory(r.Category),
		TransactionID: r.TransactionID,
	}
}

// ToDeductInput converts to the debit use case input.
func (r *BalanceChangeRequest) ToDeductInput() usecase.DeductBalanceInput {
	return usecase.DeductBalanceInput{
		UserID:        r.UserID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Description:   r.Description,
		Category:      domain.RecordCategory(r.Category),
		TransactionID: r.TransactionID,
	}
}

// TransferRequest represents a cross-user transfer.
type TransferRequest struct {
	FromUserID  string          `json:"from_user_id"`
	ToUserID    string          `json:"to_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromUserID:  r.FromUserID,
		ToUserID:    r.ToUserID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Description: r.Description,
	}
}

// WithdrawRequest represents a withdrawal request.
type WithdrawRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ToAddress   string          `json:"to_address"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput() usecase.WithdrawInput {
	return usecase.WithdrawInput{
		UserID:      r.UserID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		ToAddress:   r.ToAddress,
		Description: r.Description,
	}
}

// DepositRequest represents an inbound deposit notification.
type DepositRequest struct {
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	FromAddress string          `json:"from_address"`
	TxHash      string          `json:"tx_hash,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput() usecase.DepositInput {
	return usecase.DepositInput{
		UserID:      r.UserID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		FromAddress: r.FromAddress,
		TxHash:      r.TxHash,
		Description: r.Description,
	}
}

// AppendRecordRequest represents a standalone journal marker.
type AppendRecordRequest struct {
	UserID        string          `json:"user_id"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description,omitempty"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	TransactionID *string         `json:"transaction_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AppendRecordRequest) ToUseCaseInput() usecase.AppendRecordInput {
	return usecase.AppendRecordInput{
		UserID:        r.UserID,
		Type:          domain.RecordType(r.Type),
		Category:      domain.RecordCategory(r.Category),
		Amount:        r.Amount,
		Currency:      r.Currency,
		Description:   r.Description,
		Metadata:      r.Metadata,
		TransactionID: r.TransactionID,
	}
}

// CreateTransactionRequest represents a request to open a settlement.
type CreateTransactionRequest struct {
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
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		Hash:        r.Hash,
		OrderID:     r.OrderID,
		AssetID:     r.AssetID,
		BuyerID:     r.BuyerID,
		SellerID:    r.SellerID,
		Currency:    r.Currency,
		FromAddress: r.FromAddress,
		ToAddress:   r.ToAddress,
		BlockNumber: r.BlockNumber,
		GasUsed:     r.GasUsed,
		Memo:        r.Memo,
		Type:        domain.TransactionType(r.Type),
		Amount:      r.Amount,
		Fee:         r.Fee,
	}
}

// FailTransactionRequest carries the reason a settlement is abandoned.
type FailTransactionRequest struct {
	Reason string `json:"reason"`
}

package domain

import "errors"

var (
	// Wallet errors
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateWallet     = errors.New("wallet with this address and currency already exists")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletNotActive     = errors.New("wallet is not active")

	// Journal errors
	ErrRecordNotFound = errors.New("financial record not found")
	ErrInvalidRecord  = errors.New("invalid financial record")

	// Transaction errors
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidState           = errors.New("transaction is not in a confirmable state")

	// Shared errors
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrSameUser      = errors.New("cannot transfer to the same user")
	ErrUserNotFound  = errors.New("user not found")
	ErrConflict      = errors.New("concurrent modification, retry the operation")
	ErrInternal      = errors.New("settlement failed")
)

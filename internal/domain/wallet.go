package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletKind distinguishes externally-owned addresses from wallets the
// platform holds custody of.
type WalletKind string

const (
	WalletKindExternal  WalletKind = "external"
	WalletKindCustodial WalletKind = "custodial"
)

// WalletStatus represents the lifecycle status of a wallet.
type WalletStatus string

const (
	WalletStatusActive   WalletStatus = "active"
	WalletStatusInactive WalletStatus = "inactive"
	WalletStatusFrozen   WalletStatus = "frozen"
)

// Wallet is a per-user, per-currency balance holder. A user may own
// several wallets per currency; at most one of them is the default.
type Wallet struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	UserID        string
	Address       string
	Currency      string
	Label         string
	Kind          WalletKind
	Status        WalletStatus
	Balance       decimal.Decimal
	FrozenBalance decimal.Decimal
	Version       int64
	IsDefault     bool
}

// Active reports whether the wallet participates in balance sums and
// deductions.
func (w *Wallet) Active() bool {
	return w.Status == WalletStatusActive
}

// ValidateDebit checks that the wallet can give up amount without going
// negative.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit of amount.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit of amount.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}

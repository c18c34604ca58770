package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWallet_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		expectError bool
	}{
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(50),
			expectError: false,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(100),
			expectError: false,
		},
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			debitAmount: decimal.NewFromInt(150),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{Balance: tt.balance, Status: WalletStatusActive}

			err := w.ValidateDebit(tt.debitAmount)
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWallet_Active(t *testing.T) {
	tests := []struct {
		name   string
		status WalletStatus
		want   bool
	}{
		{name: "active wallet", status: WalletStatusActive, want: true},
		{name: "inactive wallet", status: WalletStatusInactive, want: false},
		{name: "frozen wallet", status: WalletStatusFrozen, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{Status: tt.status}
			if got := w.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWallet_ApplyDebitCredit(t *testing.T) {
	w := &Wallet{Balance: decimal.NewFromInt(60)}

	if got := w.ApplyDebit(decimal.NewFromInt(25)); !got.Equal(decimal.NewFromInt(35)) {
		t.Errorf("ApplyDebit = %s, want 35", got)
	}

	if got := w.ApplyCredit(decimal.NewFromInt(25)); !got.Equal(decimal.NewFromInt(85)) {
		t.Errorf("ApplyCredit = %s, want 85", got)
	}
}

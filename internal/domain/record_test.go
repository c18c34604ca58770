package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestFinancialRecord_Validate(t *testing.T) {
	tests := []struct {
		name        string
		record      FinancialRecord
		expectError bool
	}{
		{
			name: "income with matching balance delta",
			record: FinancialRecord{
				Type:          RecordTypeIncome,
				Category:      CategoryTrading,
				Amount:        dec("25"),
				BalanceBefore: decPtr("100"),
				BalanceAfter:  decPtr("125"),
			},
		},
		{
			name: "expense with matching balance delta",
			record: FinancialRecord{
				Type:          RecordTypeExpense,
				Category:      CategoryTrading,
				Amount:        dec("60"),
				BalanceBefore: decPtr("60"),
				BalanceAfter:  decPtr("0"),
			},
		},
		{
			name: "standalone marker without balances",
			record: FinancialRecord{
				Type:     RecordTypeWithdrawal,
				Category: CategoryTrading,
				Amount:   dec("10"),
			},
		},
		{
			name: "delta does not match amount",
			record: FinancialRecord{
				Type:          RecordTypeIncome,
				Category:      CategoryTrading,
				Amount:        dec("25"),
				BalanceBefore: decPtr("100"),
				BalanceAfter:  decPtr("120"),
			},
			expectError: true,
		},
		{
			name: "only one balance side set",
			record: FinancialRecord{
				Type:          RecordTypeIncome,
				Category:      CategoryTrading,
				Amount:        dec("25"),
				BalanceBefore: decPtr("100"),
			},
			expectError: true,
		},
		{
			name: "non-positive amount",
			record: FinancialRecord{
				Type:     RecordTypeFee,
				Category: CategoryPlatformFee,
				Amount:   dec("0"),
			},
			expectError: true,
		},
		{
			name: "unknown type",
			record: FinancialRecord{
				Type:     RecordType("bonus"),
				Category: CategoryTrading,
				Amount:   dec("1"),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrInvalidAddress  = errors.New("invalid wallet address")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrScaleTooFine    = errors.New("amount has more than 8 fractional digits")
)

// Validation constants
const (
	// AmountScale is the fixed-point scale of every monetary value.
	AmountScale = 8

	MaxAddressLength  = 255
	MaxCurrencyLength = 16
	MaxLabelLength    = 128
	MaxMetadataSize   = 10240
	MaxAmount         = "1000000000000"
)

// ValidateAmount validates a monetary amount: positive, within range
// and representable at the fixed-point scale.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.Exponent() < -AmountScale {
		return fmt.Errorf("%w: got %s", ErrScaleTooFine, amount.String())
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateCurrency validates a currency code. Currencies are opaque
// codes here, so only shape is checked, not membership in a list.
func ValidateCurrency(currency string) error {
	currency = strings.TrimSpace(currency)

	if currency == "" || len(currency) > MaxCurrencyLength {
		return ErrInvalidCurrency
	}

	for _, r := range currency {
		isUpper := r >= 'A' && r <= 'Z'
		isDigit := r >= '0' && r <= '9'
		if !isUpper && !isDigit {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
		}
	}

	return nil
}

// ValidateAddress validates a wallet address.
func ValidateAddress(address string) error {
	address = strings.TrimSpace(address)

	if address == "" || len(address) > MaxAddressLength {
		return ErrInvalidAddress
	}

	return nil
}

// ValidateMetadata bounds the size of a metadata blob.
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("metadata size %d bytes exceeds limit of %d bytes", size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination clamps page/limit to sane bounds.
func ValidatePagination(page, limit int) (int, int) {
	const maxPageSize = 100
	const defaultPageSize = 10

	if page <= 0 {
		page = 1
	}

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit
}

package domain

import (
	"github.com/shopspring/decimal"
)

// ValidateAmount checks that an operation amount is positive and carries at
// most two fraction digits. All amounts in the ledger are fixed-point
// decimals; binary floating point is never used for money.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount parses a decimal amount string from an external caller and
// validates it. Returns ErrInvalidAmount for anything that is not a
// positive two-fraction-digit decimal.
func ParseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

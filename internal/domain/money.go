package domain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var amountNoise = regexp.MustCompile(`[\s,]`)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a display amount such as "1,234.56" to cents.
// Ties round half-up: decimal.Round rounds half away from zero and amounts are never negative.
func ToMinorUnits(amount string) (int64, error) {
	cleaned := amountNoise.ReplaceAllString(amount, "")
	if cleaned == "" {
		return 0, NewValidationError("amount is required")
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, NewValidationError("amount " + amount + " is not a number")
	}
	if value.IsNegative() {
		return 0, NewValidationError("amount cannot be negative")
	}

	return value.Mul(hundred).Round(0).IntPart(), nil
}

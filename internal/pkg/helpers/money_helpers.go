package helpers

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// MaxChargeMinorUnits caps one checkout at 1,000,000.00 in major units
const MaxChargeMinorUnits int64 = 100_000_000

// ErrAmountOutOfRange is returned for amounts that round to nothing or exceed the cap
var ErrAmountOutOfRange = errors.New("amount out of range")

// ToMinorUnits converts a major-unit amount (cedis) to whole minor units
// (pesewas), rounding half away from zero. The rounded value must be
// positive and at most MaxChargeMinorUnits.
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrAmountOutOfRange
	}
	minor := decimal.NewFromFloat(amount).Shift(2).Round(0)
	if !minor.IsPositive() || minor.GreaterThan(decimal.NewFromInt(MaxChargeMinorUnits)) {
		return 0, ErrAmountOutOfRange
	}
	return minor.IntPart(), nil
}

// MajorUnits converts stored minor units back to the display amount
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// FormatAmount renders minor units with their currency code, e.g. "GHS 50.00"
func FormatAmount(minor int64, currency string) string {
	return currency + " " + MajorUnits(minor).StringFixed(2)
}

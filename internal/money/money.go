// Package money converts between minor currency units (cents), major units,
// and TWD display strings. All persisted amounts are integer cents; decimal
// arithmetic only appears at the display and input boundaries.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Major returns the amount in major currency units for JSON responses,
// e.g. 6000 -> 60, 499 -> 4.99.
func Major(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(hundred).Float64()
	return f
}

// FormatTWD renders cents as a TWD display string, e.g. 6000 -> "NT$60.00".
// Matches the storefront's zh-TW currency formatting.
func FormatTWD(cents int64) string {
	return "NT$" + decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}

// ToCents converts a major-unit amount (possibly fractional, as submitted by
// admin product forms) to integer cents, rounding half away from zero.
func ToCents(major float64) int64 {
	return decimal.NewFromFloat(major).Mul(hundred).Round(0).IntPart()
}

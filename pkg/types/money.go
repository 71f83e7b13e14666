package types

import "github.com/shopspring/decimal"

// FormatMinor renders an amount stored in minor units (cents) with two decimals.
func FormatMinor(amount int64) string {
	return decimal.NewFromInt(amount).Shift(-2).StringFixed(2)
}

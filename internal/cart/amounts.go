package cart

import (
	"math"

	pkgerrors "github.com/angelmondragon/bookstore-backend/pkg/errors"
)

func errAmountOutOfRange() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "cart amount exceeds the supported range")
}

// mulAmount multiplies two non-negative amounts, reporting false on int64 overflow.
func mulAmount(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

// addAmount adds two non-negative amounts, reporting false on int64 overflow.
func addAmount(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

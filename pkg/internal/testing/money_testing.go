package testing

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

// RandomAmount returns a positive amount with two decimal places
// in a range (0, max]
func RandomAmount(max int64) decimal.Decimal {
	cents := 1 + rand.Int63n(max*100)
	return decimal.New(cents, -2)
}

// MustDecimal parses the value or panics. To be used for tests only
func MustDecimal(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

package model

import "github.com/shopspring/decimal"

// Money columns are NUMERIC(AmountPrecision, AmountScale).
const (
	AmountPrecision = 19
	AmountScale     = 4
)

// amountLimit is the first value with more integer digits than a money column holds.
var amountLimit = decimal.New(1, AmountPrecision-AmountScale)

// ValidAmount reports whether amount is positive and is stored exactly by a
// money column, without rounding or overflow.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() &&
		amount.LessThan(amountLimit) &&
		amount.Round(AmountScale).Equal(amount)
}

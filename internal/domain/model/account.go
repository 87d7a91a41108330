package model

import "github.com/shopspring/decimal"

// Account holds the authoritative balance of a bank account.
type Account struct {
	ID      int64
	Balance decimal.Decimal
}

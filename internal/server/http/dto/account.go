package dto

import "github.com/shopspring/decimal"

// AccountResponse represents the current balance of an account.
type AccountResponse struct {
	ID      int64           `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

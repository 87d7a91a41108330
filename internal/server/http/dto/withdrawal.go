package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawResponse carries the message of a successful withdrawal.
type WithdrawResponse struct {
	Message string `json:"message"`
}

// WithdrawalRequestResponse describes a stored idempotency record.
type WithdrawalRequestResponse struct {
	IdempotencyKey uuid.UUID       `json:"idempotency_key"`
	AccountID      int64           `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Outcome        string          `json:"outcome"`
	Result         string          `json:"result"`
	CreatedAt      time.Time       `json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome classifies the memoized result of a withdrawal request.
type Outcome string

const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeRejected  Outcome = "REJECTED"
)

const (
	ResultWithdrawalSuccessful = "Withdrawal successful."
	ResultInsufficientFunds    = "Insufficient funds."
)

// WithdrawalRequest is the idempotency record stored once per client key.
type WithdrawalRequest struct {
	IdempotencyKey uuid.UUID
	AccountID      int64
	Amount         decimal.Decimal
	Outcome        Outcome
	Result         string
	CreatedAt      time.Time
}

// Succeeded reports whether the stored request debited the account.
func (r *WithdrawalRequest) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

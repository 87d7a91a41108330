package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatusSuccessful is the only status emitted; failures produce no event.
const WithdrawalStatusSuccessful = "SUCCESSFUL"

// WithdrawalEvent notifies downstream consumers that money left an account.
type WithdrawalEvent struct {
	ID        uuid.UUID       `json:"id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewWithdrawalEvent builds a successful withdrawal event with a fresh id.
func NewWithdrawalEvent(accountID int64, amount decimal.Decimal, at time.Time) WithdrawalEvent {
	return WithdrawalEvent{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Status:    WithdrawalStatusSuccessful,
		Timestamp: at.UTC(),
	}
}

// EventType returns the name recorded in the outbox for this event.
func (WithdrawalEvent) EventType() string {
	return "WithdrawalEvent"
}

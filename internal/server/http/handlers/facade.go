package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/withdrawal/internal/domain/model"
)

// BankFacade encapsulates account operations exposed via HTTP.
type BankFacade interface {
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, key uuid.UUID) (string, error)
	Balance(ctx context.Context, accountID int64) (*model.Account, error)
	Request(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// Facade aggregates the full set of operations used across handlers.
type Facade interface {
	BankFacade
	HealthFacade
}

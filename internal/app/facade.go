package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/usecase"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type BankFacade struct {
	withdrawals *usecase.WithdrawalUseCase
	health      HealthChecker
}

func NewBankFacade(withdrawals *usecase.WithdrawalUseCase, health HealthChecker) *BankFacade {
	return &BankFacade{withdrawals: withdrawals, health: health}
}

func (f *BankFacade) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, key uuid.UUID) (string, error) {
	return f.withdrawals.Withdraw(ctx, accountID, amount, key)
}

func (f *BankFacade) Balance(ctx context.Context, accountID int64) (*model.Account, error) {
	return f.withdrawals.Balance(ctx, accountID)
}

func (f *BankFacade) Request(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error) {
	return f.withdrawals.Request(ctx, key)
}

func (f *BankFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

package test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/withdrawal/internal/domain/model"
)

// WithdrawCall records arguments passed to BankFacadeStub.Withdraw.
type WithdrawCall struct {
	AccountID int64
	Amount    decimal.Decimal
	Key       uuid.UUID
}

// BankFacadeStub provides controllable behaviour for bank endpoints.
type BankFacadeStub struct {
	WithdrawFn func(context.Context, int64, decimal.Decimal, uuid.UUID) (string, error)
	BalanceFn  func(context.Context, int64) (*model.Account, error)
	RequestFn  func(context.Context, uuid.UUID) (*model.WithdrawalRequest, error)
	HealthFn   func(context.Context) error

	mu    sync.Mutex
	Calls []WithdrawCall
}

// Withdraw records the call and delegates to override or succeeds.
func (s *BankFacadeStub) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, key uuid.UUID) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, WithdrawCall{AccountID: accountID, Amount: amount, Key: key})
	s.mu.Unlock()
	if s.WithdrawFn != nil {
		return s.WithdrawFn(ctx, accountID, amount, key)
	}
	return model.ResultWithdrawalSuccessful, nil
}

// Balance returns configured account or a default one.
func (s *BankFacadeStub) Balance(ctx context.Context, accountID int64) (*model.Account, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, accountID)
	}
	return &model.Account{ID: accountID, Balance: decimal.NewFromInt(100)}, nil
}

// Request returns configured record or a succeeded one.
func (s *BankFacadeStub) Request(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error) {
	if s.RequestFn != nil {
		return s.RequestFn(ctx, key)
	}
	return &model.WithdrawalRequest{
		IdempotencyKey: key,
		AccountID:      1,
		Amount:         decimal.NewFromInt(30),
		Outcome:        model.OutcomeSucceeded,
		Result:         model.ResultWithdrawalSuccessful,
	}, nil
}

// HealthCheck delegates to override or reports healthy.
func (s *BankFacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}

// WithdrawCalls returns a snapshot of recorded withdraw calls.
func (s *BankFacadeStub) WithdrawCalls() []WithdrawCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WithdrawCall(nil), s.Calls...)
}

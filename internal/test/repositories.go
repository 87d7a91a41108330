package test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/withdrawal/internal/domain/errors"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/domain/repository"
)

// AccountRepositoryStub allows tests to customize account behaviour.
type AccountRepositoryStub struct {
	BalanceForUpdateFn func(context.Context, int64) (decimal.Decimal, error)
	DebitFn            func(context.Context, int64, decimal.Decimal) error
	GetByIDFn          func(context.Context, int64) (*model.Account, error)
}

// BalanceForUpdate delegates to override or reports a missing account.
func (s *AccountRepositoryStub) BalanceForUpdate(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if s.BalanceForUpdateFn != nil {
		return s.BalanceForUpdateFn(ctx, accountID)
	}
	return decimal.Zero, domainErrors.ErrNotFound
}

// Debit delegates to override when provided.
func (s *AccountRepositoryStub) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if s.DebitFn != nil {
		return s.DebitFn(ctx, accountID, amount)
	}
	return nil
}

// GetByID delegates to override or reports a missing account.
func (s *AccountRepositoryStub) GetByID(ctx context.Context, accountID int64) (*model.Account, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, accountID)
	}
	return nil, domainErrors.ErrNotFound
}

// WithdrawalRequestRepositoryStub allows tests to customize idempotency records.
type WithdrawalRequestRepositoryStub struct {
	GetByKeyFn func(context.Context, uuid.UUID) (*model.WithdrawalRequest, error)
	CreateFn   func(context.Context, *model.WithdrawalRequest) error
}

// GetByKey delegates to override or reports a missing record.
func (s *WithdrawalRequestRepositoryStub) GetByKey(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error) {
	if s.GetByKeyFn != nil {
		return s.GetByKeyFn(ctx, key)
	}
	return nil, domainErrors.ErrNotFound
}

// Create delegates to override when provided.
func (s *WithdrawalRequestRepositoryStub) Create(ctx context.Context, req *model.WithdrawalRequest) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return nil
}

// OutboxRepositoryStub records inserted entries.
type OutboxRepositoryStub struct {
	InsertFn func(context.Context, *model.OutboxEntry) error
	Entries  []model.OutboxEntry
	mu       sync.Mutex
}

// Insert records entry unless override returns an error.
func (s *OutboxRepositoryStub) Insert(ctx context.Context, entry *model.OutboxEntry) error {
	if s.InsertFn != nil {
		if err := s.InsertFn(ctx, entry); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, *entry)
	return nil
}

// TxStub bundles repository stubs as one transaction.
type TxStub struct {
	AccountsRepo repository.AccountRepository
	RequestsRepo repository.WithdrawalRequestRepository
	OutboxRepo   repository.OutboxRepository
}

func (t *TxStub) Accounts() repository.AccountRepository { return t.AccountsRepo }

func (t *TxStub) WithdrawalRequests() repository.WithdrawalRequestRepository {
	return t.RequestsRepo
}

func (t *TxStub) Outbox() repository.OutboxRepository { return t.OutboxRepo }

// TransactorStub runs callbacks against a fixed transaction.
type TransactorStub struct {
	AtomicallyFn func(context.Context, func(repository.Tx) error) error
	Tx           repository.Tx
	Calls        int
}

// Atomically delegates to override or invokes fn with Tx.
func (s *TransactorStub) Atomically(ctx context.Context, fn func(repository.Tx) error) error {
	s.Calls++
	if s.AtomicallyFn != nil {
		return s.AtomicallyFn(ctx, fn)
	}
	return fn(s.Tx)
}

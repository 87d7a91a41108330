package test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/withdrawal/internal/domain/errors"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/domain/repository"
)

// Operations that can be made to fail with MemStore.FailOn.
const (
	OpBegin            = "begin"
	OpGetRequest       = "get_request"
	OpBalanceForUpdate = "balance_for_update"
	OpDebit            = "debit"
	OpCreateRequest    = "create_request"
	OpInsertOutbox     = "insert_outbox"
	OpCommit           = "commit"
)

// ErrCheckViolation mimics the non-negative balance constraint.
var ErrCheckViolation = errors.New("balance check constraint violated")

type memState struct {
	accounts map[int64]decimal.Decimal
	requests map[uuid.UUID]model.WithdrawalRequest
	outbox   []model.OutboxEntry
}

func newMemState() *memState {
	return &memState{
		accounts: make(map[int64]decimal.Decimal),
		requests: make(map[uuid.UUID]model.WithdrawalRequest),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for id, b := range s.accounts {
		c.accounts[id] = b
	}
	for k, r := range s.requests {
		c.requests[k] = r
	}
	c.outbox = append(c.outbox, s.outbox...)
	return c
}

// MemStore is an in-memory transactional store. Each transaction works on a
// private copy of the committed state and swaps it in on commit. Transactions
// are serialized, which stands in for the row lock taken by BalanceForUpdate.
type MemStore struct {
	txMu sync.Mutex

	mu           sync.Mutex
	state        *memState
	faults       map[string]error
	beforeCreate func(model.WithdrawalRequest)
	commits      int
	rollbacks    int
	balanceReads int
}

// NewMemStore constructs an empty store.
func NewMemStore() *MemStore {
	return &MemStore{state: newMemState(), faults: make(map[string]error)}
}

// SeedAccount stores a committed account balance.
func (s *MemStore) SeedAccount(id int64, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.accounts[id] = balance
}

// SeedRequest stores a committed idempotency record.
func (s *MemStore) SeedRequest(req model.WithdrawalRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.requests[req.IdempotencyKey] = req
}

// FailOn makes op return err until cleared with a nil err.
func (s *MemStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// BeforeCreate registers a hook run inside CreateRequest before the
// uniqueness check. Tests use it to commit a competing record.
func (s *MemStore) BeforeCreate(fn func(model.WithdrawalRequest)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeCreate = fn
}

// Balance returns the committed balance of an account.
func (s *MemStore) Balance(id int64) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.state.accounts[id]
	return b, ok
}

// Requests returns committed idempotency records.
func (s *MemStore) Requests() map[uuid.UUID]model.WithdrawalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]model.WithdrawalRequest, len(s.state.requests))
	for k, r := range s.state.requests {
		out[k] = r
	}
	return out
}

// OutboxEntries returns committed outbox entries ordered by insertion.
func (s *MemStore) OutboxEntries() []model.OutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OutboxEntry(nil), s.state.outbox...)
}

// Commits reports how many transactions committed.
func (s *MemStore) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Rollbacks reports how many transactions rolled back.
func (s *MemStore) Rollbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// BalanceReads reports how many locking balance reads were issued.
func (s *MemStore) BalanceReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceReads
}

func (s *MemStore) fault(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults[op]
}

// Atomically runs fn against a private copy of the committed state.
func (s *MemStore) Atomically(ctx context.Context, fn func(repository.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fault(OpBegin); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	work := s.state.clone()
	s.mu.Unlock()

	tx := &memTx{store: s, state: work}
	if err = fn(tx); err == nil {
		err = s.fault(OpCommit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.rollbacks++
		return err
	}
	for k, r := range s.state.requests {
		if _, ok := work.requests[k]; !ok {
			work.requests[k] = r
		}
	}
	s.state = work
	s.commits++
	return nil
}

// Accounts reads committed accounts outside of a transaction.
func (s *MemStore) Accounts() repository.AccountRepository {
	return &memAccounts{store: s}
}

// WithdrawalRequests reads committed records outside of a transaction.
func (s *MemStore) WithdrawalRequests() repository.WithdrawalRequestRepository {
	return &memRequests{store: s}
}

type memTx struct {
	store *MemStore
	state *memState
}

func (t *memTx) Accounts() repository.AccountRepository {
	return &memAccounts{store: t.store, state: t.state}
}

func (t *memTx) WithdrawalRequests() repository.WithdrawalRequestRepository {
	return &memRequests{store: t.store, state: t.state}
}

func (t *memTx) Outbox() repository.OutboxRepository {
	return &memOutbox{store: t.store, state: t.state}
}

// memAccounts operates on state when bound to a transaction and on the
// committed state otherwise.
type memAccounts struct {
	store *MemStore
	state *memState
}

func (r *memAccounts) view(fn func(*memState) error) error {
	if r.state != nil {
		return fn(r.state)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.state)
}

func (r *memAccounts) BalanceForUpdate(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if err := r.store.fault(OpBalanceForUpdate); err != nil {
		return decimal.Zero, err
	}
	r.store.mu.Lock()
	r.store.balanceReads++
	r.store.mu.Unlock()

	var balance decimal.Decimal
	err := r.view(func(st *memState) error {
		b, ok := st.accounts[accountID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		balance = b
		return nil
	})
	return balance, err
}

func (r *memAccounts) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	if err := r.store.fault(OpDebit); err != nil {
		return err
	}
	return r.view(func(st *memState) error {
		b, ok := st.accounts[accountID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		next := b.Sub(amount)
		if next.IsNegative() {
			return ErrCheckViolation
		}
		st.accounts[accountID] = next
		return nil
	})
}

func (r *memAccounts) GetByID(ctx context.Context, accountID int64) (*model.Account, error) {
	var acc *model.Account
	err := r.view(func(st *memState) error {
		b, ok := st.accounts[accountID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		acc = &model.Account{ID: accountID, Balance: b}
		return nil
	})
	return acc, err
}

type memRequests struct {
	store *MemStore
	state *memState
}

func (r *memRequests) GetByKey(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error) {
	if err := r.store.fault(OpGetRequest); err != nil {
		return nil, err
	}
	var found *model.WithdrawalRequest
	read := func(st *memState) {
		if req, ok := st.requests[key]; ok {
			found = &req
		}
	}
	if r.state != nil {
		read(r.state)
	} else {
		r.store.mu.Lock()
		read(r.store.state)
		r.store.mu.Unlock()
	}
	if found == nil {
		return nil, domainErrors.ErrNotFound
	}
	return found, nil
}

// Create enforces key uniqueness against both the transaction copy and
// anything committed meanwhile, like a unique index would.
func (r *memRequests) Create(ctx context.Context, req *model.WithdrawalRequest) error {
	if err := r.store.fault(OpCreateRequest); err != nil {
		return err
	}

	r.store.mu.Lock()
	hook := r.store.beforeCreate
	r.store.mu.Unlock()
	if hook != nil {
		hook(*req)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.state.requests[req.IdempotencyKey]; ok {
		return domainErrors.ErrAlreadyExists
	}
	target := r.state
	if target == nil {
		target = r.store.state
	}
	if _, ok := target.requests[req.IdempotencyKey]; ok {
		return domainErrors.ErrAlreadyExists
	}
	if _, ok := target.accounts[req.AccountID]; !ok {
		return domainErrors.ErrNotFound
	}
	target.requests[req.IdempotencyKey] = *req
	return nil
}

type memOutbox struct {
	store *MemStore
	state *memState
}

func (r *memOutbox) Insert(ctx context.Context, entry *model.OutboxEntry) error {
	if err := r.store.fault(OpInsertOutbox); err != nil {
		return err
	}
	r.state.outbox = append(r.state.outbox, *entry)
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/withdrawal/internal/domain/errors"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/domain/repository"
)

const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type accountRepository struct {
	q querier
}

type withdrawalRequestRepository struct {
	q querier
}

type outboxRepository struct {
	q querier
}

// txRepositories binds repositories to a single open transaction.
type txRepositories struct {
	tx pgx.Tx
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories outside of a transaction.
func (s *Storage) Accounts() repository.AccountRepository {
	return &accountRepository{q: s.pool}
}

func (s *Storage) WithdrawalRequests() repository.WithdrawalRequestRepository {
	return &withdrawalRequestRepository{q: s.pool}
}

func (t *txRepositories) Accounts() repository.AccountRepository {
	return &accountRepository{q: t.tx}
}

func (t *txRepositories) WithdrawalRequests() repository.WithdrawalRequestRepository {
	return &withdrawalRequestRepository{q: t.tx}
}

func (t *txRepositories) Outbox() repository.OutboxRepository {
	return &outboxRepository{q: t.tx}
}

// moneyType matches the scale accepted by model.ValidAmount.
var moneyType = fmt.Sprintf("NUMERIC(%d,%d)", model.AmountPrecision, model.AmountScale)

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id BIGSERIAL PRIMARY KEY,
            balance ` + moneyType + ` NOT NULL DEFAULT 0 CHECK (balance >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS withdrawal_requests (
            idempotency_key UUID PRIMARY KEY,
            account_id BIGINT NOT NULL REFERENCES accounts(id),
            amount ` + moneyType + ` NOT NULL,
            outcome TEXT NOT NULL,
            result TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS event_outbox (
            id UUID PRIMARY KEY,
            event_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            occurred_at TIMESTAMPTZ NOT NULL,
            processed BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawal_requests_account ON withdrawal_requests(account_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_event_outbox_unprocessed ON event_outbox(occurred_at) WHERE NOT processed`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- AccountRepository implementation ---

func (r *accountRepository) BalanceForUpdate(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	const query = `SELECT balance FROM accounts WHERE id=$1 FOR UPDATE`
	var balance decimal.Decimal
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domainErrors.ErrNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *accountRepository) Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = balance - $1 WHERE id=$2`
	tag, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, accountID int64) (*model.Account, error) {
	const query = `SELECT id, balance FROM accounts WHERE id=$1`
	var a model.Account
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&a.ID, &a.Balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// --- WithdrawalRequestRepository implementation ---

func (r *withdrawalRequestRepository) GetByKey(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error) {
	const query = `SELECT account_id, amount, outcome, result, created_at
                   FROM withdrawal_requests WHERE idempotency_key=$1`
	req := model.WithdrawalRequest{IdempotencyKey: key}
	var outcome string
	err := r.q.QueryRow(ctx, query, key).Scan(&req.AccountID, &req.Amount, &outcome, &req.Result, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	req.Outcome = model.Outcome(outcome)
	return &req, nil
}

func (r *withdrawalRequestRepository) Create(ctx context.Context, req *model.WithdrawalRequest) error {
	const query = `INSERT INTO withdrawal_requests (idempotency_key, account_id, amount, outcome, result, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, req.IdempotencyKey, req.AccountID, req.Amount, string(req.Outcome), req.Result, req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// --- OutboxRepository implementation ---

func (r *outboxRepository) Insert(ctx context.Context, entry *model.OutboxEntry) error {
	const query = `INSERT INTO event_outbox (id, event_type, payload, occurred_at, processed)
                   VALUES ($1, $2, $3, $4, false)`
	if _, err := r.q.Exec(ctx, query, entry.ID, entry.EventType, string(entry.Payload), entry.OccurredAt); err != nil {
		return err
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// Atomically runs fn with repositories bound to a single transaction.
func (s *Storage) Atomically(ctx context.Context, fn func(repository.Tx) error) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return fn(&txRepositories{tx: tx})
	})
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

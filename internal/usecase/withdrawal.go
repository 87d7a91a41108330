package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/withdrawal/internal/clock"
	domainErrors "github.com/polkiloo/withdrawal/internal/domain/errors"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/domain/repository"
)

// EventProducer enqueues domain events into the outbox.
type EventProducer interface {
	Enqueue(ctx context.Context, event any, tx repository.Tx) error
}

// WithdrawalUseCase debits accounts exactly once per idempotency key.
type WithdrawalUseCase struct {
	transactor repository.Transactor
	reader     repository.Factory
	producer   EventProducer
	clock      clock.Clock
	logger     *slog.Logger
}

// NewWithdrawalUseCase constructs WithdrawalUseCase.
func NewWithdrawalUseCase(
	transactor repository.Transactor,
	reader repository.Factory,
	producer EventProducer,
	clk clock.Clock,
	logger *slog.Logger,
) *WithdrawalUseCase {
	return &WithdrawalUseCase{
		transactor: transactor,
		reader:     reader,
		producer:   producer,
		clock:      clk,
		logger:     logger,
	}
}

// Withdraw debits amount from the account unless key was already processed,
// in which case the stored outcome is returned again.
func (u *WithdrawalUseCase) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, key uuid.UUID) (string, error) {
	if !model.ValidAmount(amount) {
		return "", domainErrors.ErrInvalidAmount
	}
	if key == uuid.Nil {
		return "", domainErrors.ErrIdempotencyKeyRequired
	}

	log := u.logger.With(
		slog.Int64("account_id", accountID),
		slog.String("amount", amount.String()),
		slog.String("idempotency_key", key.String()),
	)
	log.Info("withdrawal requested")

	// The transaction is not abandoned halfway when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	var (
		message  string
		outcome  error
		replayed bool
	)
	err := u.transactor.Atomically(ctx, func(tx repository.Tx) error {
		message, outcome, replayed = "", nil, false

		existing, err := tx.WithdrawalRequests().GetByKey(ctx, key)
		switch {
		case err == nil:
			replayed = true
			message, outcome = replay(existing)
			return nil
		case !errors.Is(err, domainErrors.ErrNotFound):
			return err
		}

		balance, err := tx.Accounts().BalanceForUpdate(ctx, accountID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				outcome = domainErrors.ErrAccountNotFound
				return nil
			}
			return err
		}

		if balance.LessThan(amount) {
			if err := u.record(ctx, tx, key, accountID, amount, model.OutcomeRejected, model.ResultInsufficientFunds); err != nil {
				return err
			}
			outcome = domainErrors.ErrInsufficientFunds
			return nil
		}

		if err := tx.Accounts().Debit(ctx, accountID, amount); err != nil {
			return err
		}

		event := model.NewWithdrawalEvent(accountID, amount, u.clock.Now())
		if err := u.producer.Enqueue(ctx, event, tx); err != nil {
			return err
		}

		if err := u.record(ctx, tx, key, accountID, amount, model.OutcomeSucceeded, model.ResultWithdrawalSuccessful); err != nil {
			return err
		}
		message = model.ResultWithdrawalSuccessful
		return nil
	})

	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		log.Info("concurrent request with the same key committed first")
		return u.replayCommitted(ctx, log, key)
	}
	if err != nil {
		log.Error("withdrawal failed", slog.Any("error", err))
		return "", domainErrors.ErrWithdrawalFailed
	}

	switch {
	case replayed:
		log.Info("withdrawal replayed from idempotency record")
	case errors.Is(outcome, domainErrors.ErrAccountNotFound):
		log.Warn("account not found")
	case errors.Is(outcome, domainErrors.ErrInsufficientFunds):
		log.Warn("insufficient funds")
	default:
		log.Info("withdrawal successful")
	}

	if outcome != nil {
		return "", outcome
	}
	return message, nil
}

// Balance returns the committed state of an account.
func (u *WithdrawalUseCase) Balance(ctx context.Context, accountID int64) (*model.Account, error) {
	account, err := u.reader.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrAccountNotFound
		}
		u.logger.Error("read account failed", slog.Int64("account_id", accountID), slog.Any("error", err))
		return nil, domainErrors.ErrWithdrawalFailed
	}
	return account, nil
}

// Request returns the idempotency record stored for key.
func (u *WithdrawalUseCase) Request(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error) {
	if key == uuid.Nil {
		return nil, domainErrors.ErrIdempotencyKeyRequired
	}
	req, err := u.reader.WithdrawalRequests().GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrRequestNotFound
		}
		u.logger.Error("read withdrawal request failed", slog.String("idempotency_key", key.String()), slog.Any("error", err))
		return nil, domainErrors.ErrWithdrawalFailed
	}
	return req, nil
}

func (u *WithdrawalUseCase) record(
	ctx context.Context,
	tx repository.Tx,
	key uuid.UUID,
	accountID int64,
	amount decimal.Decimal,
	outcome model.Outcome,
	result string,
) error {
	return tx.WithdrawalRequests().Create(ctx, &model.WithdrawalRequest{
		IdempotencyKey: key,
		AccountID:      accountID,
		Amount:         amount,
		Outcome:        outcome,
		Result:         result,
		CreatedAt:      u.clock.Now(),
	})
}

func (u *WithdrawalUseCase) replayCommitted(ctx context.Context, log *slog.Logger, key uuid.UUID) (string, error) {
	existing, err := u.reader.WithdrawalRequests().GetByKey(ctx, key)
	if err != nil {
		log.Error("committed request not readable after conflict", slog.Any("error", err))
		return "", domainErrors.ErrWithdrawalFailed
	}
	message, outcome := replay(existing)
	log.Info("withdrawal replayed from idempotency record")
	return message, outcome
}

// replay turns a stored record back into the result of the original call.
func replay(req *model.WithdrawalRequest) (string, error) {
	if req.Succeeded() {
		return req.Result, nil
	}
	return "", domainErrors.Validation(domainErrors.ErrInsufficientFunds.Code, req.Result)
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/withdrawal/internal/domain/model"
)

// WithdrawalRequestRepository stores idempotency records of withdrawals.
type WithdrawalRequestRepository interface {
	GetByKey(ctx context.Context, key uuid.UUID) (*model.WithdrawalRequest, error)
	Create(ctx context.Context, req *model.WithdrawalRequest) error
}

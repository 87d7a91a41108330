package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/withdrawal/internal/domain/model"
)

// AccountRepository manages account balances.
type AccountRepository interface {
	// BalanceForUpdate reads the balance and holds an exclusive row lock until the transaction ends.
	BalanceForUpdate(ctx context.Context, accountID int64) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal) error
	GetByID(ctx context.Context, accountID int64) (*model.Account, error)
}

package repository

import "context"

// Tx exposes repositories bound to one open database transaction.
type Tx interface {
	Accounts() AccountRepository
	WithdrawalRequests() WithdrawalRequestRepository
	Outbox() OutboxRepository
}

// Transactor runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
type Transactor interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Factory describes access to repositories outside of an explicit transaction.
type Factory interface {
	Accounts() AccountRepository
	WithdrawalRequests() WithdrawalRequestRepository
}

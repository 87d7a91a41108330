package repository

import (
	"context"

	"github.com/polkiloo/withdrawal/internal/domain/model"
)

// OutboxRepository appends entries to the event outbox.
type OutboxRepository interface {
	Insert(ctx context.Context, entry *model.OutboxEntry) error
}

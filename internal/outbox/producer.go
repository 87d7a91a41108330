package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/polkiloo/withdrawal/internal/clock"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/domain/repository"
)

// ErrNilEvent is returned when Enqueue receives no event.
var ErrNilEvent = errors.New("outbox: nil event")

// Typed lets events declare the name recorded in the outbox.
type Typed interface {
	EventType() string
}

// Producer serializes domain events into the event outbox.
type Producer struct {
	transactor repository.Transactor
	clock      clock.Clock
	logger     *slog.Logger
}

// NewProducer constructs Producer.
func NewProducer(transactor repository.Transactor, clk clock.Clock, logger *slog.Logger) *Producer {
	return &Producer{transactor: transactor, clock: clk, logger: logger}
}

// Enqueue records event as an unprocessed outbox entry. With a non-nil tx the
// insert joins that transaction and becomes visible only if it commits;
// otherwise the entry is committed in a transaction of its own.
func (p *Producer) Enqueue(ctx context.Context, event any, tx repository.Tx) error {
	entry, err := p.newEntry(event)
	if err != nil {
		return err
	}

	if tx != nil {
		return p.insert(ctx, tx, entry)
	}

	return p.transactor.Atomically(ctx, func(own repository.Tx) error {
		return p.insert(ctx, own, entry)
	})
}

func (p *Producer) newEntry(event any) (*model.OutboxEntry, error) {
	if isNil(event) {
		return nil, ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox event: %w", err)
	}

	return &model.OutboxEntry{
		ID:         uuid.New(),
		EventType:  TypeName(event),
		Payload:    payload,
		OccurredAt: p.clock.Now(),
		Processed:  false,
	}, nil
}

func (p *Producer) insert(ctx context.Context, tx repository.Tx, entry *model.OutboxEntry) error {
	if err := tx.Outbox().Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	p.logger.Debug("outbox entry enqueued",
		slog.String("entry_id", entry.ID.String()),
		slog.String("event_type", entry.EventType))
	return nil
}

// TypeName returns the name under which event is stored.
func TypeName(event any) string {
	if typed, ok := event.(Typed); ok {
		return typed.EventType()
	}
	t := reflect.TypeOf(event)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

func isNil(event any) bool {
	if event == nil {
		return true
	}
	v := reflect.ValueOf(event)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

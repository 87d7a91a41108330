package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/withdrawal/internal/clock"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/domain/repository"
	testhelpers "github.com/polkiloo/withdrawal/internal/test"
)

var fixedNow = time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

func newTestProducer(transactor repository.Transactor) *Producer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewProducer(transactor, clock.New(clockwork.NewFakeClockAt(fixedNow)), logger)
}

type plainEvent struct {
	Name string `json:"name"`
}

func TestEnqueueJoinsCallerTransaction(t *testing.T) {
	transactor := &testhelpers.TransactorStub{AtomicallyFn: func(context.Context, func(repository.Tx) error) error {
		t.Fatal("producer must not open its own transaction when one is supplied")
		return nil
	}}
	outboxRepo := &testhelpers.OutboxRepositoryStub{}
	tx := &testhelpers.TxStub{OutboxRepo: outboxRepo}

	evt := model.NewWithdrawalEvent(1, decimal.RequireFromString("30"), fixedNow)
	if err := newTestProducer(transactor).Enqueue(context.Background(), evt, tx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(outboxRepo.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(outboxRepo.Entries))
	}
	entry := outboxRepo.Entries[0]
	if entry.EventType != "WithdrawalEvent" {
		t.Errorf("unexpected event type %q", entry.EventType)
	}
	if entry.Processed {
		t.Errorf("expected new entry to be unprocessed")
	}
	if !entry.OccurredAt.Equal(fixedNow) {
		t.Errorf("expected occurred at %v, got %v", fixedNow, entry.OccurredAt)
	}

	var decoded model.WithdrawalEvent
	if err := json.Unmarshal(entry.Payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.ID != evt.ID || decoded.AccountID != 1 || !decoded.Amount.Equal(evt.Amount) {
		t.Errorf("payload does not round trip: %+v", decoded)
	}
}

func TestEnqueueAssignsFreshEntryIDs(t *testing.T) {
	outboxRepo := &testhelpers.OutboxRepositoryStub{}
	tx := &testhelpers.TxStub{OutboxRepo: outboxRepo}
	p := newTestProducer(&testhelpers.TransactorStub{})

	for i := 0; i < 3; i++ {
		if err := p.Enqueue(context.Background(), plainEvent{Name: "x"}, tx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	seen := make(map[string]struct{})
	for _, e := range outboxRepo.Entries {
		seen[e.ID.String()] = struct{}{}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", len(seen))
	}
}

func TestEnqueueWithoutTransactionCommitsOnItsOwn(t *testing.T) {
	store := testhelpers.NewMemStore()
	p := newTestProducer(store)

	if err := p.Enqueue(context.Background(), &plainEvent{Name: "standalone"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := store.OutboxEntries()
	if len(entries) != 1 {
		t.Fatalf("expected committed entry, got %d", len(entries))
	}
	if entries[0].EventType != "plainEvent" {
		t.Errorf("unexpected event type %q", entries[0].EventType)
	}
	if string(entries[0].Payload) != `{"name":"standalone"}` {
		t.Errorf("unexpected payload %s", entries[0].Payload)
	}
	if store.Commits() != 1 {
		t.Errorf("expected one commit, got %d", store.Commits())
	}
}

func TestEnqueueWithoutTransactionRollsBackOnInsertFailure(t *testing.T) {
	store := testhelpers.NewMemStore()
	store.FailOn(testhelpers.OpInsertOutbox, errors.New("disk full"))
	p := newTestProducer(store)

	if err := p.Enqueue(context.Background(), plainEvent{}, nil); err == nil {
		t.Fatal("expected insert error")
	}
	if len(store.OutboxEntries()) != 0 {
		t.Fatal("expected no committed entries")
	}
	if store.Rollbacks() != 1 {
		t.Fatalf("expected rollback, got %d", store.Rollbacks())
	}
}

func TestEnqueuePropagatesInsertError(t *testing.T) {
	insertErr := errors.New("insert failed")
	tx := &testhelpers.TxStub{OutboxRepo: &testhelpers.OutboxRepositoryStub{
		InsertFn: func(context.Context, *model.OutboxEntry) error { return insertErr },
	}}

	err := newTestProducer(&testhelpers.TransactorStub{}).Enqueue(context.Background(), plainEvent{}, tx)
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
}

func TestEnqueueRejectsInvalidEvents(t *testing.T) {
	outboxRepo := &testhelpers.OutboxRepositoryStub{}
	tx := &testhelpers.TxStub{OutboxRepo: outboxRepo}
	p := newTestProducer(&testhelpers.TransactorStub{})

	if err := p.Enqueue(context.Background(), nil, tx); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected nil event error, got %v", err)
	}
	var nilPtr *plainEvent
	if err := p.Enqueue(context.Background(), nilPtr, tx); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected nil event error for typed nil, got %v", err)
	}
	if err := p.Enqueue(context.Background(), math.Inf(1), tx); err == nil {
		t.Fatal("expected marshal error")
	}
	if len(outboxRepo.Entries) != 0 {
		t.Fatalf("expected nothing inserted, got %d", len(outboxRepo.Entries))
	}
}

func TestTypeName(t *testing.T) {
	cases := []struct {
		name  string
		event any
		want  string
	}{
		{"declared", model.WithdrawalEvent{}, "WithdrawalEvent"},
		{"declared pointer", &model.WithdrawalEvent{}, "WithdrawalEvent"},
		{"struct", plainEvent{}, "plainEvent"},
		{"pointer", &plainEvent{}, "plainEvent"},
		{"nil", nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TypeName(tc.event); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestModuleProvidesProducer(t *testing.T) {
	var p *Producer
	app := fx.New(
		fx.Supply(slog.New(slog.NewJSONHandler(io.Discard, nil))),
		fx.Provide(func() repository.Transactor { return testhelpers.NewMemStore() }),
		fx.Provide(func() clock.Clock { return clock.New(clockwork.NewFakeClock()) }),
		Module,
		fx.Populate(&p),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx app failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected producer")
	}
}

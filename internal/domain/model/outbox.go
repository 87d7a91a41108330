package model

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is a serialized domain event awaiting relay.
type OutboxEntry struct {
	ID         uuid.UUID
	EventType  string
	Payload    []byte
	OccurredAt time.Time
	Processed  bool
}

package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock yields the current wall time in UTC.
type Clock interface {
	Now() time.Time
}

type utcClock struct {
	base clockwork.Clock
}

// New wraps base so that every reading is normalized to UTC.
func New(base clockwork.Clock) Clock {
	if base == nil {
		base = clockwork.NewRealClock()
	}
	return &utcClock{base: base}
}

func (c *utcClock) Now() time.Time {
	return c.base.Now().UTC()
}

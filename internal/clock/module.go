package clock

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

// Module provides the real system clock.
var Module = fx.Provide(
	clockwork.NewRealClock,
	New,
)

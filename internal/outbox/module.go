package outbox

import "go.uber.org/fx"

// Module provides the outbox producer.
var Module = fx.Provide(NewProducer)

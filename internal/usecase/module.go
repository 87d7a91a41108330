package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/withdrawal/internal/outbox"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	func(p *outbox.Producer) EventProducer { return p },
	NewWithdrawalUseCase,
)

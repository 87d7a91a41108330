package router

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"

	"github.com/polkiloo/withdrawal/internal/config"
	"github.com/polkiloo/withdrawal/internal/server/http/middleware"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(
		newLimiterStore,
		Setup,
	),
	fx.Invoke(registerJanitor),
)

func newLimiterStore(cfg *config.Config, clk clockwork.Clock) *middleware.LimiterStore {
	return middleware.NewLimiterStore(cfg.RateLimit, cfg.RateBurst, clk)
}

func registerJanitor(lc fx.Lifecycle, store *middleware.LimiterStore) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				store.RunJanitor(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

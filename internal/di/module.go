package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/withdrawal/internal/app"
	"github.com/polkiloo/withdrawal/internal/clock"
	"github.com/polkiloo/withdrawal/internal/config"
	"github.com/polkiloo/withdrawal/internal/logger"
	"github.com/polkiloo/withdrawal/internal/outbox"
	"github.com/polkiloo/withdrawal/internal/server/http/router"
	"github.com/polkiloo/withdrawal/internal/storage/postgres"
	"github.com/polkiloo/withdrawal/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		clock.Module,
		postgres.Module,
		outbox.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

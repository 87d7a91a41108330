package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/withdrawal/internal/server/http/handlers"
	"github.com/polkiloo/withdrawal/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.Facade, limiter *middleware.LimiterStore, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	// Client IPs key the rate limiter, so forwarding headers are not trusted.
	_ = engine.SetTrustedProxies(nil)

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	healthHandler := handlers.NewHealthHandler(facade)
	bankHandler := handlers.NewBankHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	bank := engine.Group("/api/bank")
	bank.Use(middleware.RateLimit(limiter))
	bank.POST("/withdraw", bankHandler.Withdraw)
	bank.GET("/accounts/:id", bankHandler.Account)
	bank.GET("/withdrawals/:key", bankHandler.Request)

	return engine
}

package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsabonet/milagre-car-site/internal/auth/credentials"
	"github.com/jsabonet/milagre-car-site/internal/auth/handler"
	"github.com/jsabonet/milagre-car-site/internal/catalog"
	"github.com/jsabonet/milagre-car-site/internal/config"
	"github.com/jsabonet/milagre-car-site/internal/logger"
	"github.com/jsabonet/milagre-car-site/internal/middleware"
	"github.com/jsabonet/milagre-car-site/internal/token"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	principalSource := credentials.NewPGSource(infra.DB)
	verifier := credentials.NewVerifier(principalSource)

	tokenStore := token.NewRedisStore(infra.Redis.Client)
	manager := token.NewManager(
		tokenStore,
		principalSource,
		token.WithTTL(cfg.TokenTTL),
	)

	authHandler := handler.NewHandler(verifier, manager)
	catalogHandler := catalog.NewHandler(infra.DB)

	gate := middleware.NewGate(manager)

	var sweeper *token.Sweeper
	if cfg.TokenSweepInterval > 0 {
		sweeper, err = token.NewSweeper(manager, cfg.TokenSweepInterval)
		if err != nil {
			return nil, nil, err
		}
		sweeper.Start()
		logger.Info("token sweep enabled", map[string]any{
			"interval": cfg.TokenSweepInterval.String(),
		})
	}

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// The gate runs ahead of every route. It only ever rejects stale
	// admin tokens; everything else passes through to the handlers.
	router.Use(middleware.GinGate(gate))

	authHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if sweeper != nil {
			sweeper.Stop()
		}
		if err := infra.Redis.Close(); err != nil {
			logger.Warn("failed to close redis client", map[string]any{
				"error": err.Error(),
			})
		}
		return infra.DB.Close()
	}, nil
}

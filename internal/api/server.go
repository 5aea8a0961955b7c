package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jiwonMe/work-mma-sdk/internal/config"
	infragin "github.com/jiwonMe/work-mma-sdk/pkg/gin"
	"github.com/jiwonMe/work-mma-sdk/pkg/logger"
)

// Default timeout values.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// NewServer creates the HTTP server with health routes, middleware and
// the service routes attached.
func NewServer(
	handler *Handler,
	relay *RelayHandler,
	cfg *config.Config,
	redisPing func() error,
	upstreamPing func() error,
	log logger.Logger,
) *infragin.Server {
	corsConfig := infragin.CORSConfig{
		Enabled:          cfg.CORS.Enabled,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}

	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithCORS(corsConfig).
		WithRedisHealthCheck(redisPing).
		WithHealthCheck("mma", infragin.UpstreamHealthChecker("mma", upstreamPing)).
		WithRoutes(func(router *gin.Engine) {
			SetupServiceRoutes(router, handler, relay)
		}).
		Build()
}

// SetupServiceRoutes configures service-specific API routes. Health
// routes are registered by the server builder.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, relay *RelayHandler) {
	// The relay path is part of the transport contract and stays
	// outside the versioned prefix.
	router.POST("/api/mma-proxy", relay.Relay)

	v1 := router.Group("/api/v1")
	{
		search := v1.Group("/search")
		search.GET("", handler.Search)
		search.POST("", handler.Search)

		taxonomy := v1.Group("/taxonomy")
		taxonomy.GET("/service-types", handler.ServiceTypes)
		taxonomy.GET("/company-sizes", handler.CompanySizes)
		taxonomy.GET("/industries", handler.Industries)
		taxonomy.GET("/provinces", handler.Provinces)
		taxonomy.GET("/cities", handler.Cities)

		v1.GET("/search-rank", handler.SearchRank)
		v1.POST("/search-rank/record", handler.RecordSearchRank)
	}
}

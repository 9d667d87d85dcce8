package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/technest/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	limited := RateLimitMiddleware(cfg.RateLimit.PerIP)

	// API v1 routes
	v1 := router.Group("/api/v1", limited)
	{
		v1.GET("/compare", handler.CompareDevices)
		v1.GET("/devices/:slug", handler.GetDevice)
		v1.GET("/search", handler.SearchDevices)
		v1.POST("/rank", handler.RankDevices)
		v1.POST("/ai/chat", handler.Chat)
	}

	// Unversioned paths used by the existing web frontend
	legacy := router.Group("/", limited)
	{
		legacy.GET("/compare", handler.CompareDevices)
		legacy.GET("/search", handler.SearchDevices)
		legacy.POST("/ai/chat", handler.Chat)
	}

	return router
}

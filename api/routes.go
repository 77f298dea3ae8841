package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/mailroomhq/mailroom/api/handlers"
	"github.com/mailroomhq/mailroom/api/middleware"
	"github.com/mailroomhq/mailroom/internal/tracing"
	"github.com/mailroomhq/mailroom/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	apiHandlers := handlers.InitHandlers(s)

	r.GET("/health", handlers.HealthCheck)

	// Webhook endpoints authenticate per delivery against the provider's
	// validation callback, not with the admin API key.
	webhooks := r.Group("/webhooks")
	{
		webhooks.GET("/test", handlers.WebhookTest)
		webhooks.POST("/inbound", apiHandlers.Webhook.InboundEmail())
	}

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-MAILROOM-API-KEY",
		ValidAPIKey: apikey,
	})

	// Operational surface, API-key protected
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	{
		maintenance := api.Group("/maintenance")
		{
			maintenance.POST("/trash-purge", apiHandlers.Maintenance.TrashPurge())
		}
	}
}

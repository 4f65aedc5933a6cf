package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/membership-portal-api/internal/config"
	"github.com/membership-portal-api/internal/models"
	"github.com/membership-portal-api/internal/service"
	"github.com/membership-portal-api/internal/validation"
	"github.com/rs/zerolog"
)

const actorKey = "actor"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(actorMiddleware(log))

	// Handlers
	moderationHandler := NewModerationHandler(services, cfg, log)
	notificationHandler := NewNotificationHandler(services, log)
	membershipHandler := NewMembershipHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services, log))

	// API v1
	v1 := router.Group("/v1")
	{
		moderation := v1.Group("/moderation")
		{
			moderation.GET("/:kind", moderationHandler.List)
			moderation.POST("/:kind", moderationHandler.Create)
			moderation.POST("/:kind/bulk-transition", moderationHandler.BulkTransition)
			moderation.POST("/:kind/:id/transition", moderationHandler.Transition)
			moderation.PUT("/:kind/:id/content", moderationHandler.UpdateContent)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// Convenience wrappers over bulk-transition, fixed to membership
		// applications
		memberships := v1.Group("/memberships")
		{
			memberships.POST("/approve", membershipHandler.Approve)
			memberships.POST("/reject", membershipHandler.Reject)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "membership-portal-api",
	})
}

// metricsHandler reports the moderation queue depth per kind, derived from
// the store on each call.
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Query.PendingCounts(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}

		pending := gin.H{}
		for kind, count := range counts {
			pending[string(kind)] = count
		}

		c.JSON(http.StatusOK, gin.H{
			"pending":   pending,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// actorMiddleware resolves the identity headers injected by the auth
// gateway into the actor context every handler reads. Missing headers mean
// an anonymous actor; a malformed role fails the request.
func actorMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := validation.ParseActor(c.GetHeader("X-Actor-ID"), c.GetHeader("X-Actor-Role"))
		if err != nil {
			respondError(c, log, err)
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom reads the actor placed by actorMiddleware
func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Anonymous
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Actor-ID, X-Actor-Role")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

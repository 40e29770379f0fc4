package router

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vibecircles.web/internal/config"
	"vibecircles.web/internal/handler"
	"vibecircles.web/internal/jwt"
	"vibecircles.web/internal/middleware"
	appErrors "vibecircles.web/pkg/errors"
	"vibecircles.web/pkg/response"
)

// SetupRouter builds the engine. rateLimiter may be nil to disable limiting.
func SetupRouter(
	cfg *config.Config,
	logger *slog.Logger,
	jwtService *jwt.Service,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	messageHandler *handler.MessageHandler,
) *gin.Engine {
	gin.SetMode(cfg.App.Mode)

	r := gin.New()

	// global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowCredentials,
	))
	if rateLimiter != nil {
		r.Use(middleware.RateLimit(rateLimiter))
	}

	r.GET("/health", healthHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		messages := api.Group("/messages")
		messages.Use(middleware.JWTAuth(jwtService))
		{
			messages.GET("/conversations", messageHandler.ListConversations)
			messages.GET("/conversation/:userId", messageHandler.GetThread)
			messages.POST("/send", messageHandler.Send)
			messages.PUT("/read/:userId", messageHandler.MarkRead)
			messages.GET("/unread-count", messageHandler.UnreadCount)
			messages.DELETE("/:messageId", messageHandler.Delete)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.Error(c, appErrors.ErrRouteNotFound)
			return
		}
		response.Error(c, appErrors.ErrNotFound)
	})

	return r
}

package routes

import (
	"log/slog"
	"time"

	"dating-service/internal/api/handlers"
	"dating-service/internal/api/middleware"
	"dating-service/internal/services"
	"dating-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine        *gin.Engine
	wsHandler     *handlers.WSHandler
	authHandler   *handlers.AuthHandler
	datingHandler *handlers.DatingHandler
	rateLimitMW   *middleware.RateLimitMiddleware
	authMW        *middleware.AuthMiddleware
}

func NewRouter(
	hub *websocket.Hub,
	authService *services.AuthService,
	redisService *services.RedisService,
	log *slog.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	return &Router{
		engine:        engine,
		wsHandler:     handlers.NewWSHandler(hub, log),
		authHandler:   handlers.NewAuthHandler(authService),
		datingHandler: handlers.NewDatingHandler(redisService),
		rateLimitMW:   middleware.NewRateLimitMiddleware(redisService),
		authMW:        middleware.NewAuthMiddleware(authService),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint; the token travels as a query parameter because
	// browsers cannot set headers during the upgrade handshake.
	api.GET("/ws",
		r.authMW.WSAuth(),
		r.rateLimitMW.WebSocketRateLimit(5, time.Minute),
		r.wsHandler.HandleWebSocket,
	)

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		dating := auth.Group("/dating")
		dating.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			dating.GET("/online", r.datingHandler.OnlineCount)
		}
	}

	// Public routes (no authentication required)
	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
		{
			authRoutes.POST("/register", r.authHandler.Register)
			authRoutes.POST("/login", r.authHandler.Login)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

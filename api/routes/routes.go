package routes

import (
	"net/http"

	"github.com/ArowuTest/sequence-draw-backend/internal/config"
	"github.com/ArowuTest/sequence-draw-backend/internal/handlers"
	"github.com/ArowuTest/sequence-draw-backend/internal/metrics"
	"github.com/ArowuTest/sequence-draw-backend/internal/middleware"
	"github.com/ArowuTest/sequence-draw-backend/internal/services"
	"github.com/ArowuTest/sequence-draw-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies holds everything the router wires into handlers
type HandlerDependencies struct {
	ParticipantHandler *handlers.ParticipantHandler
	DrawHandler        *handlers.DrawHandler
	ConfigHandler      *handlers.ConfigHandler
	AuthHandler        *handlers.AuthHandler
	WebSocketHandler   *handlers.WebSocketHandler
	TokenService       *jwt.TokenService
	Metrics            *metrics.Metrics
	// HealthCheck reports storage reachability; nil means always healthy
	HealthCheck func(c *gin.Context) error
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.JWTAuthMiddleware(deps.TokenService, services.RoleAdmin))

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			if deps.HealthCheck != nil {
				if err := deps.HealthCheck(c); err != nil {
					c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
					return
				}
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)

		public.GET("/snapshot", deps.DrawHandler.GetSnapshot)
		public.GET("/history", deps.DrawHandler.GetHistory)
		public.GET("/config", deps.ConfigHandler.GetConfig)

		public.GET("/participants", deps.ParticipantHandler.ListParticipants)
		public.GET("/participants/eligible", deps.ParticipantHandler.ListEligible)
		public.POST("/participants", deps.ParticipantHandler.Register)

		public.GET("/ws", deps.WebSocketHandler.Serve)
	}

	// Operator routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAdmin())
	{
		participants := admin.Group("/participants")
		{
			participants.POST("", deps.ParticipantHandler.RegisterManual)
			participants.POST("/bulk", deps.ParticipantHandler.BulkRegister)
			participants.POST("/import", deps.ParticipantHandler.ImportCSV)
		}

		admin.POST("/draws/:kind", deps.DrawHandler.Draw)

		admin.PUT("/config", deps.ConfigHandler.UpdateConfig)
		admin.PUT("/config/target", deps.ConfigHandler.SetTarget)
		admin.POST("/reset", deps.ConfigHandler.Reset)
	}

	return router
}

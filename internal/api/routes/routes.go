package routes

import (
	"farmwatch-backend/internal/api/handlers"
	"farmwatch-backend/internal/api/middleware"
	"farmwatch-backend/internal/config"
	"farmwatch-backend/internal/motion"
	"farmwatch-backend/internal/notifier"
	"farmwatch-backend/internal/repository"
	"farmwatch-backend/internal/services"
	"farmwatch-backend/internal/websocket"
	"farmwatch-backend/pkg/ratelimit"
	"farmwatch-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupRoutes(router *gin.Engine, db *mongo.Database, store motion.Store, pipeline *notifier.Pipeline, wsManager *websocket.Manager, redisClient *redis.Client, cfg *config.Config) {
	// Initialize repositories
	probeRepo := repository.NewProbeRepository(db)

	// Initialize services
	probeService := services.NewProbeService(probeRepo)

	// Initialize handlers
	motionHandler := handlers.NewMotionHandler(store, cfg.StrictMotionValidation)
	alertHandler := handlers.NewAlertHandler(pipeline)
	probeHandler := handlers.NewProbeHandler(probeService)
	healthHandler := handlers.NewHealthHandler(db, redisClient)
	wsHandler := handlers.NewWebSocketHandler(wsManager)

	router.HandleMethodNotAllowed = true
	router.NoMethod(handlers.MethodNotAllowed)

	// Device-facing motion endpoint; fixed wire format, no auth, open CORS
	motionGroup := router.Group("/api/motion")
	{
		if cfg.MotionRateLimit > 0 {
			limiter := ratelimit.NewLimiter(ratelimit.Limit{
				RequestsPerMinute: cfg.MotionRateLimit,
			})
			motionGroup.POST("", middleware.RateLimit(limiter), motionHandler.Submit)
		} else {
			motionGroup.POST("", motionHandler.Submit)
		}
		motionGroup.GET("", motionHandler.Poll)
		motionGroup.OPTIONS("", motionHandler.Preflight)
	}

	router.GET("/health", healthHandler.HealthCheck)

	// Dashboard API
	api := router.Group("/api/v1")
	{
		alerts := api.Group("/alerts")
		{
			alerts.GET("", alertHandler.GetAlerts)
			alerts.GET("/stats", alertHandler.GetAlertStatistics)
			alerts.PATCH("/:id/acknowledge", alertHandler.AcknowledgeAlert)
			alerts.POST("/acknowledge-all", alertHandler.AcknowledgeAllAlerts)
			alerts.DELETE("/:id/dismiss", alertHandler.DismissAlert)
		}

		api.POST("/motion/test", alertHandler.TestMotion)

		probes := api.Group("/probes")
		{
			probes.GET("", probeHandler.GetProbes)
			probes.POST("", probeHandler.CreateProbe)
			probes.GET("/:id", probeHandler.GetProbe)
			probes.PATCH("/:id", probeHandler.UpdateProbe)
			probes.DELETE("/:id", probeHandler.DeleteProbe)
			probes.POST("/:id/readings", probeHandler.IngestReading)
		}

		api.GET("/ws", wsHandler.HandleWebSocket)
	}
}

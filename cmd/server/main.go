package main

import (
	"log"

	"farmwatch-backend/internal/api/routes"
	"farmwatch-backend/internal/config"
	"farmwatch-backend/internal/models"
	"farmwatch-backend/internal/motion"
	"farmwatch-backend/internal/notifier"
	"farmwatch-backend/internal/websocket"
	"farmwatch-backend/pkg/database"
	"farmwatch-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Disconnect(db.Client())

	// Motion slot: Redis when configured, otherwise in-process memory
	var redisClient *redis.Client
	var store motion.Store
	if cfg.Redis != nil {
		redisClient = redis.NewClient(cfg.Redis)
		defer redisClient.Close()

		healthStatus := redisClient.HealthCheck()
		if healthStatus.IsConnected {
			log.Printf("Redis connected successfully at %s", healthStatus.ConnectionInfo)
		} else {
			log.Printf("Redis connection failed: %s (will retry automatically)", healthStatus.Error)
		}

		store = motion.NewRedisStore(redisClient.GetClient(), 0)
	} else {
		log.Println("REDIS_ADDR not set, using in-memory motion store")
		store = motion.NewMemoryStore()
	}

	// WebSocket manager for pushing alerts to dashboards
	wsManager := websocket.NewManager()
	wsManager.Start()
	defer wsManager.Stop()

	// Notification pipeline: polls the motion endpoint, dedups, broadcasts
	bus := notifier.NewBus()
	source := notifier.NewHTTPSource(cfg.MotionAPIURL)
	pipeline := notifier.NewPipeline(source, bus, notifier.Config{
		PollInterval: cfg.PollInterval,
	})
	pipeline.SetAlertBroadcast(func(alert models.Alert) {
		if err := wsManager.BroadcastAlert(alert); err != nil {
			log.Printf("Failed to broadcast alert: %v", err)
		}
	})
	pipeline.Start()
	defer pipeline.Stop()

	// Setup Gin router
	router := gin.Default()

	// CORS middleware
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Protocol"},
		ExposeHeaders: []string{"Content-Length"},
	}

	// Handle wildcard origin for development
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false // Cannot use credentials with AllowAllOrigins
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}

	router.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(router, db, store, pipeline, wsManager, redisClient, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}

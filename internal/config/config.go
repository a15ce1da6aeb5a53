package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	Port           string
	MongoURI       string
	AllowedOrigins []string

	// MotionAPIURL is the motion endpoint the notification pipeline talks
	// to. Defaults to this server's own /api/motion so a single deployment
	// is self-contained; point it at a remote relay to poll that instead.
	MotionAPIURL string

	// PollInterval is how often the pipeline asks the motion source for
	// new events.
	PollInterval time.Duration

	// StrictMotionValidation rejects motion submissions missing deviceId
	// or location instead of substituting defaults.
	StrictMotionValidation bool

	// MotionRateLimit caps motion submissions per client per minute.
	// Zero disables the limiter.
	MotionRateLimit int

	// Redis is nil when REDIS_ADDR is not set; the motion slot then lives
	// in process memory.
	Redis *RedisConfig
}

func Load() *Config {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI environment variable is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	pollInterval := 5 * time.Second
	if raw := os.Getenv("MOTION_POLL_INTERVAL"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			pollInterval = time.Duration(seconds) * time.Second
		} else {
			log.Printf("Invalid MOTION_POLL_INTERVAL %q, using default", raw)
		}
	}

	motionRateLimit := 120
	if raw := os.Getenv("MOTION_RATE_LIMIT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			motionRateLimit = parsed
		} else {
			log.Printf("Invalid MOTION_RATE_LIMIT %q, using default", raw)
		}
	}

	motionAPIURL := os.Getenv("MOTION_API_URL")
	if motionAPIURL == "" {
		motionAPIURL = "http://localhost:" + port + "/api/motion"
	}

	var redisConfig *RedisConfig
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		db := 0
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				db = parsed
			}
		}
		redisConfig = &RedisConfig{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		}
	}

	return &Config{
		Port:                   port,
		MongoURI:               mongoURI,
		AllowedOrigins:         strings.Split(allowedOrigins, ","),
		MotionAPIURL:           motionAPIURL,
		PollInterval:           pollInterval,
		StrictMotionValidation: os.Getenv("STRICT_MOTION_VALIDATION") == "true",
		MotionRateLimit:        motionRateLimit,
		Redis:                  redisConfig,
	}
}

package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"farmwatch-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	client      *redis.Client
	config      *config.RedisConfig
	mu          sync.RWMutex
	isConnected bool
}

type HealthStatus struct {
	IsConnected    bool          `json:"isConnected"`
	LastPing       time.Time     `json:"lastPing"`
	ResponseTime   time.Duration `json:"responseTime"`
	ConnectionInfo string        `json:"connectionInfo"`
	Error          string        `json:"error,omitempty"`
}

// NewClient creates a Redis client and tests the connection once. A failed
// test is logged, not fatal; go-redis retries per command.
func NewClient(cfg *config.RedisConfig) *Client {
	c := &Client{
		config: cfg,
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection test failed: %v", err)
	} else {
		c.setConnected(true)
		log.Println("Redis connected successfully")
	}

	return c
}

// GetClient returns the underlying go-redis client (thread-safe)
func (c *Client) GetClient() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// IsConnected returns the last observed connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// HealthCheck performs a ping and returns detailed status
func (c *Client) HealthCheck() HealthStatus {
	status := HealthStatus{
		ConnectionInfo: c.config.Addr,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	start := time.Now()
	err := c.client.Ping(ctx).Err()
	status.ResponseTime = time.Since(start)
	status.LastPing = time.Now()

	if err != nil {
		status.Error = err.Error()
		c.setConnected(false)
	} else {
		status.IsConnected = true
		c.setConnected(true)
	}

	return status
}

// Close shuts down the underlying client
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) setConnected(connected bool) {
	c.mu.Lock()
	c.isConnected = connected
	c.mu.Unlock()
}

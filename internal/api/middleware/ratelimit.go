package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farmwatch-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles requests per client IP. Built for the device-facing
// motion endpoint, where a stuck PIR sensor can otherwise hammer the server;
// devices carry no credentials, so the IP is the only stable identity.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Allow(clientIP(c))

		limit := limiter.Limit()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.RequestsPerMinute))
		c.Header("X-RateLimit-Burst", strconv.Itoa(limit.BurstSize))

		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"message":    fmt.Sprintf("Too many requests. Try again in %ds", seconds),
				"retryAfter": seconds,
			})
			return
		}

		c.Next()
	}
}

// clientIP resolves the real client address behind proxies.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}

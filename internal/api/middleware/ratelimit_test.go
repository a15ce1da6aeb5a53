package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"farmwatch-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(limit ratelimit.Limit) (*gin.Engine, *ratelimit.Limiter) {
	gin.SetMode(gin.TestMode)

	limiter := ratelimit.NewLimiter(limit)
	router := gin.New()
	router.POST("/api/motion", RateLimit(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, limiter
}

func doRequest(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/motion", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	router, limiter := newLimitedRouter(ratelimit.Limit{RequestsPerMinute: 60, BurstSize: 2})
	defer limiter.Stop()

	require.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)

	w := doRequest(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	router, limiter := newLimitedRouter(ratelimit.Limit{RequestsPerMinute: 60, BurstSize: 1})
	defer limiter.Stop()

	require.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1").Code)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2").Code)
}

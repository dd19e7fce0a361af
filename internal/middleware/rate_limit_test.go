package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/testhelpers"
)

func limitedRouter(rl *RateLimiter, userID uuid.UUID) *gin.Engine {
	router := gin.New()
	router.POST("/generate", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
		c.Next()
	}, rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doPost(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	return w
}

func TestRateLimiterWithoutRedis(t *testing.T) {
	rl := NewGenerationRateLimiter(nil, 1, time.Hour, zap.NewNop())
	router := limitedRouter(rl, uuid.New())

	for i := 0; i < 3; i++ {
		w := doPost(router)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	status, err := rl.Status(context.Background(), "anyone")
	require.NoError(t, err)
	assert.False(t, status.Enforced)
	assert.Equal(t, 1, status.Remaining)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	rl := NewGenerationRateLimiter(client, 1, time.Hour, zap.NewNop())
	router := limitedRouter(rl, uuid.New())

	assert.Equal(t, http.StatusOK, doPost(router).Code)
	assert.Equal(t, http.StatusOK, doPost(router).Code)
}

func TestRateLimitMiddlewareRequiresUser(t *testing.T) {
	rl := NewGenerationRateLimiter(nil, 1, time.Hour, zap.NewNop())
	router := gin.New()
	router.POST("/generate", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, doPost(router).Code)
}

func TestRateLimiterEnforcesLimit(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	rl := NewGenerationRateLimiter(client, 2, time.Hour, zap.NewNop())
	rl.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	userID := uuid.New()
	router := limitedRouter(rl, userID)

	first := doPost(router)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, doPost(router).Code)

	blocked := doPost(router)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1800", blocked.Header().Get("Retry-After"))

	status, err := rl.Status(context.Background(), userID.String())
	require.NoError(t, err)
	assert.True(t, status.Enforced)
	assert.Zero(t, status.Remaining)

	other := limitedRouter(rl, uuid.New())
	assert.Equal(t, http.StatusOK, doPost(other).Code)
}

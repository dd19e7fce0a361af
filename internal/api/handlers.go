package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/healthyrecipes/backend/internal/database"
	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/service"
)

// HealthHandler reports the state of the backing stores
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HealthCheck returns 200 when the database answers. Redis only degrades the status since rate limiting fails open.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "disabled"}
	status := "healthy"
	code := http.StatusOK

	if err := database.HealthCheck(ctx, h.db); err != nil {
		checks["database"] = "unavailable"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unavailable"
			if code == http.StatusOK {
				status = "degraded"
			}
		} else {
			checks["redis"] = "ok"
		}
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

// Options serves the onboarding catalogue
func Options(c *gin.Context) {
	c.JSON(http.StatusOK, service.Options())
}

// RegisterRateLimitRoutes exposes the caller's generation quota
func RegisterRateLimitRoutes(router *gin.RouterGroup, generationLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	{
		rateLimits.GET("/generation", func(c *gin.Context) {
			userID, ok := middleware.UserID(c)
			if !ok {
				middleware.RespondError(c, service.ErrUnauthenticated)
				return
			}

			status, err := generationLimiter.Status(c.Request.Context(), userID.String())
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to check rate limit"})
				return
			}

			c.JSON(http.StatusOK, status)
		})
	}
}

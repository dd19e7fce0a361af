package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/logger"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimitStatus describes a caller's standing in the current window
type RateLimitStatus struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Enforced  bool      `json:"enforced"`
}

// RateLimiter counts requests per user in fixed windows stored in Redis.
// A nil client disables enforcement, and Redis errors let the request through.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	log    *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		log:    logger.Component(log, "ratelimit"),
		now:    time.Now,
	}
}

// NewGenerationRateLimiter limits recipe generation calls per user
func NewGenerationRateLimiter(redisClient *redis.Client, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:recipe_generation",
	}, log)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting. It must run after AuthMiddleware.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), userID.String())
		if err != nil {
			rl.log.Warn("rate limit check failed, allowing request",
				zap.String("user_id", userID.String()), zap.Error(err))
			c.Next()
			return
		}
		if rl.redis == nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(resetTime.Sub(rl.now()).Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          retryAfter,
			})
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) window() (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	return strconv.FormatInt(windowStart.Unix(), 10), windowStart.Add(rl.config.Window)
}

func (rl *RateLimiter) key(userID, window string) string {
	return fmt.Sprintf("%s:%s:%s", rl.config.KeyPrefix, userID, window)
}

// IsAllowed counts a request from the given user
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, userID string) (bool, int, time.Time, error) {
	window, resetTime := rl.window()
	if rl.redis == nil {
		return true, rl.config.Limit, resetTime, nil
	}
	key := rl.key(userID, window)

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, resetTime, nil
}

// Status reports the user's usage without counting a request
func (rl *RateLimiter) Status(ctx context.Context, userID string) (RateLimitStatus, error) {
	window, resetTime := rl.window()
	status := RateLimitStatus{
		Limit:     rl.config.Limit,
		Remaining: rl.config.Limit,
		ResetAt:   resetTime,
		Enforced:  rl.redis != nil,
	}
	if rl.redis == nil {
		return status, nil
	}

	count, err := rl.redis.Get(ctx, rl.key(userID, window)).Int()
	if errors.Is(err, redis.Nil) {
		return status, nil
	}
	if err != nil {
		return RateLimitStatus{}, err
	}

	status.Remaining = rl.config.Limit - count
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	return status, nil
}

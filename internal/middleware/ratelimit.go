package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"vibecircles.web/pkg/response"
)

// RateLimitKeyPrefix redis key prefix, full key: vibecircles:ratelimit:{ip}:{window}
const RateLimitKeyPrefix = "vibecircles:ratelimit:"

// RateLimiter fixed-window request counter shared across instances through redis
type RateLimiter struct {
	client      redis.Cmdable
	maxRequests int64
	window      time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per window per client
func NewRateLimiter(client redis.Cmdable, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:      client,
		maxRequests: int64(maxRequests),
		window:      window,
		logger:      slog.Default(),
		now:         time.Now,
	}
}

// Allow counts a request for key in the current window. It returns the count
// so far and when the window resets.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Time, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	resetAt := windowStart.Add(l.window)
	redisKey := rateLimitKey(key, windowStart)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, resetAt, err
	}

	count := incr.Val()
	return count <= l.maxRequests, count, resetAt, nil
}

// RateLimit rejects clients over the limit with 429. Redis failures let the
// request through.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, count, resetAt, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			limiter.logger.Warn("Rate limiter unavailable", "clientIp", c.ClientIP(), "error", err)
			c.Next()
			return
		}

		remaining := limiter.maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Limit", strconv.FormatInt(limiter.maxRequests, 10))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("RateLimit-Reset", strconv.FormatInt(int64(resetAt.Sub(limiter.now()).Seconds()), 10))

		if !allowed {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}

func rateLimitKey(client string, windowStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", RateLimitKeyPrefix, client, windowStart.Unix())
}

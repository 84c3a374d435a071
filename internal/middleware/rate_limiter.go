package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Time window (e.g., 1 minute)
	BlockTime   time.Duration // How long to block after exceeding limit
}

// Limiter decides whether one more request from key may proceed. When it may
// not, retryAfter says how long the caller should wait.
type Limiter interface {
	CheckLimit(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit returns a Gin middleware that limits requests per client IP.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := limiter.CheckLimit(c.Request.Context(), clientIP)
		if err != nil {
			// Fail open: a limiter outage must not take the API down.
			logger.Log.Error("Rate limiter unavailable",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			logger.Log.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// RedisRateLimiter counts requests in Redis so that every server instance
// shares the same budget.
type RedisRateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRedisRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// CheckLimit uses a fixed window counter (INCR + EXPIRE). Exceeding the limit
// blocks the key for BlockTime.
func (rl *RedisRateLimiter) CheckLimit(ctx context.Context, key string) (bool, time.Duration, error) {
	blockKey := fmt.Sprintf("ratelimit:block:%s", key)
	blocked, err := rl.redis.TTL(ctx, blockKey).Result()
	if err != nil {
		return false, 0, err
	}
	if blocked > 0 {
		return false, blocked, nil
	}

	countKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := rl.redis.Incr(ctx, countKey).Result()
	if err != nil {
		return false, 0, err
	}

	// Set expiry on first request (count = 1)
	if count == 1 {
		if err := rl.redis.Expire(ctx, countKey, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		if rl.config.BlockTime > 0 {
			if err := rl.redis.Set(ctx, blockKey, 1, rl.config.BlockTime).Err(); err != nil {
				return false, 0, err
			}
			return false, rl.config.BlockTime, nil
		}
		ttl, err := rl.redis.TTL(ctx, countKey).Result()
		if err != nil || ttl <= 0 {
			ttl = rl.config.Window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

// Unblock lifts a block and resets the counter for key.
func (rl *RedisRateLimiter) Unblock(ctx context.Context, key string) error {
	return rl.redis.Del(ctx,
		fmt.Sprintf("ratelimit:block:%s", key),
		fmt.Sprintf("ratelimit:%s", key),
	).Err()
}

// LocalRateLimiter keeps one token bucket per key in memory. It serves single
// instance deployments that run without Redis.
type LocalRateLimiter struct {
	mu      sync.Mutex
	config  RateLimiterConfig
	now     func() time.Time
	buckets map[string]*localBucket
}

type localBucket struct {
	limiter      *rate.Limiter
	blockedUntil time.Time
	lastSeen     time.Time
}

func NewLocalRateLimiter(config RateLimiterConfig) *LocalRateLimiter {
	return &LocalRateLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*localBucket),
	}
}

func (rl *LocalRateLimiter) CheckLimit(ctx context.Context, key string) (bool, time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evict(now)

	b, ok := rl.buckets[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.MaxRequests)
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(every), rl.config.MaxRequests)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	if now.Before(b.blockedUntil) {
		return false, b.blockedUntil.Sub(now), nil
	}

	if b.limiter.AllowN(now, 1) {
		return true, 0, nil
	}

	if rl.config.BlockTime > 0 {
		b.blockedUntil = now.Add(rl.config.BlockTime)
		return false, rl.config.BlockTime, nil
	}
	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay, nil
}

// evict drops buckets idle for longer than a window plus a block.
func (rl *LocalRateLimiter) evict(now time.Time) {
	idle := rl.config.Window + rl.config.BlockTime
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle && !now.Before(b.blockedUntil) {
			delete(rl.buckets, key)
		}
	}
}

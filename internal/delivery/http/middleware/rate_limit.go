package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-applicant-tracker/internal/delivery/http/response"
	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	KeyFunc   func(*gin.Context) string

	// Redis is optional; fixed windows are counted in memory without it
	Redis *goredis.Client
}

// DefaultRateLimitConfig limits every client IP to limit requests per window
func DefaultRateLimitConfig(client *goredis.Client, limit int, window time.Duration) RateLimitConfig {
	if limit <= 0 {
		limit = 300
	}
	if window <= 0 {
		window = time.Minute
	}
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
		Redis:     client,
	}
}

// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type window struct {
	count   int
	resetAt time.Time
}

type memoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{windows: make(map[string]*window), now: time.Now}
}

func (m *memoryCounter) incr(key string, size time.Duration) (int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(size)}
		m.windows[key] = w
	}
	w.count++

	// drop stale windows so idle clients do not accumulate
	if len(m.windows) > 10000 {
		for k, v := range m.windows {
			if now.After(v.resetAt) {
				delete(m.windows, k)
			}
		}
	}
	return w.count, w.resetAt
}

// RateLimitMiddleware rejects requests over the configured budget with 429
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	return rateLimit(config, newMemoryCounter())
}

func rateLimit(config RateLimitConfig, mem *memoryCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := config.KeyPrefix + config.KeyFunc(c)

		var count int
		var resetAt time.Time
		if config.Redis != nil {
			var err error
			count, resetAt, err = incrRedis(c.Request.Context(), config.Redis, key, config.Window)
			if err != nil {
				logger.Log.Error("rate limiter unavailable, counting in memory",
					"request_id", c.GetString(string(domain.KeyRequestID)),
					"error", err.Error(),
				)
				count, resetAt = mem.incr(key, config.Window)
			}
		} else {
			count, resetAt = mem.incr(key, config.Window)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(mem.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.Log.Warn("rate limit triggered",
				"request_id", c.GetString(string(domain.KeyRequestID)),
				"ip", c.ClientIP(),
				"path", c.FullPath(),
			)
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func incrRedis(ctx context.Context, client *goredis.Client, key string, size time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(size.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

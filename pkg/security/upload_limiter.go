package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter caps resume uploads per client IP over a sliding window.
// Counts live in Redis when a client is given, otherwise in process memory.
type UploadLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
	now    func() time.Time

	mu         sync.Mutex
	hits       map[string][]time.Time
	maxTracked int
}

// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp in milliseconds
// Returns 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`

// NewUploadLimiter allows perMinute uploads per IP. client may be nil.
func NewUploadLimiter(client *goredis.Client, perMinute int) *UploadLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &UploadLimiter{
		client:     client,
		limit:      perMinute,
		window:     time.Minute,
		now:        time.Now,
		hits:       make(map[string][]time.Time),
		maxTracked: 10000,
	}
}

// Allow records an upload attempt for ip. It returns false with a retry
// hint in seconds once the window is full. Redis errors fail open.
func (ul *UploadLimiter) Allow(ctx context.Context, ip string) (bool, int, error) {
	if ul.client != nil {
		key := fmt.Sprintf("ratelimit:upload:ip:%s", ip)
		res, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key},
			ul.limit, int(ul.window.Seconds()), ul.now().UnixMilli()).Result()
		if err != nil {
			return true, 0, fmt.Errorf("rate limit check failed: %w", err)
		}
		allowed, ok := res.(int64)
		if !ok {
			return true, 0, fmt.Errorf("unexpected result type from rate limit script")
		}
		if allowed == 0 {
			return false, int(ul.window.Seconds()), nil
		}
		return true, 0, nil
	}

	return ul.allowLocal(ip)
}

func (ul *UploadLimiter) allowLocal(ip string) (bool, int, error) {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	now := ul.now()
	cutoff := now.Add(-ul.window)
	kept := ul.hits[ip][:0]
	for _, t := range ul.hits[ip] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= ul.limit {
		ul.hits[ip] = kept
		retry := int(kept[0].Add(ul.window).Sub(now).Seconds()) + 1
		return false, retry, nil
	}

	ul.hits[ip] = append(kept, now)

	// drop idle clients so the map does not grow with every IP ever seen
	if len(ul.hits) > ul.maxTracked {
		for k, ts := range ul.hits {
			if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
				delete(ul.hits, k)
			}
		}
	}
	return true, 0, nil
}

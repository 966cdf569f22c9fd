package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/videotube-backend/pkg/clientip"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit allows limit requests per client IP in each fixed window.
// Counters live in Redis so every instance shares them. If Redis is
// unavailable the request is let through.
func RedisRateLimit(client *redis.Client, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := RateLimitKeyPrefix + clientip.RealClientIP(r)

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, window)
			}

			ttl, err := client.TTL(ctx, key).Result()
			if err != nil || ttl < 0 {
				// a counter without expiry would block forever
				client.Expire(ctx, key, window)
				ttl = window
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

			if int(count) > limit {
				retry := int(ttl.Round(time.Second).Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				utils.WriteError(w, utils.NewAPIError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/pkg/clientip"
)

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

// RedisRateLimit allows max requests per IP in each fixed window, counted in
// Redis so the limit holds across instances. name separates the counters of
// different routes. It fails open when Redis is unavailable.
func RedisRateLimit(rdb *redis.Client, name string, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKeyPrefix + name + ":" + clientip.RealClientIP(r)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				log.WithError(err).Warn("rate limit counter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				// first request of the window starts the clock
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					log.WithError(err).Warn("rate limit window not set, dropping counter")
					rdb.Del(ctx, key)
				}
			}

			count := int(n)
			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > max {
				// a counter without expiry would block this IP forever
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl < 0 {
					rdb.Expire(ctx, key, window)
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crm-backend/pkg/response"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter in redis with a block key for
// offenders. Fails open when redis is unavailable.
func RateLimiter(rdb *redis.Client, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.Background()

			// Prefer userID if authenticated, else client IP.
			var clientID string
			if userID, ok := GetUserID(r.Context()); ok && userID != "" {
				clientID = "uid:" + userID
			} else {
				ip := r.Header.Get("X-Forwarded-For")
				if ip == "" {
					ip = r.RemoteAddr
				}
				clientID = "ip:" + strings.Split(ip, ",")[0]
			}

			key := keyPrefix + ":" + clientID
			blockKey := key + ":blocked"

			blocked, _ := rdb.Get(ctx, blockKey).Result()
			if blocked == "1" {
				ttl, _ := rdb.TTL(ctx, blockKey).Result()
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+ttl.String())
				return
			}

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Fail open: don't block traffic if redis is down.
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				rdb.Expire(ctx, key, window)
			}

			if count > int64(limit) {
				rdb.Set(ctx, blockKey, "1", blockDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(blockDuration.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Blocked for "+blockDuration.String())
				return
			}

			ttl, _ := rdb.TTL(ctx, key).Result()
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

			next.ServeHTTP(w, r)
		})
	}
}

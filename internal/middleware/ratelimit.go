package middleware

import (
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimit caps requests per client IP inside a rolling window, backed
// by Redis so the limit holds across replicas. If Redis is unavailable
// the limiter fails open and logs.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				// RealIP middleware leaves a bare address here
				ip = r.RemoteAddr
			}
			key := "ratelimit:" + ip

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("rate limit unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}
			if count > int64(limit) {
				http.Error(w, `{"error":"too many attempts, try again later"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines fixed-window rate limiting parameters.
type RateLimitConfig struct {
	Requests int           // max requests per window
	Window   time.Duration // window duration
	KeyFunc  func(r *http.Request) string
}

// RateLimiter enforces a fixed request budget per window per caller.
// Without a redis client it is a no-op (fail open).
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
	logger *slog.Logger
}

func NewRateLimiter(client *redis.Client, config RateLimitConfig, logger *slog.Logger) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIPKeyFunc
	}
	return &RateLimiter{client: client, config: config, logger: logger}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.client == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.allow(r.Context(), rl.config.KeyFunc(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"message": "Too many requests. Try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Fixed window: the counter key includes the window start, so it
	// resets naturally when the window rolls over.
	window := time.Now().Unix() / int64(rl.config.Window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	pipe := rl.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		// on redis error, allow the request (fail open)
		rl.logger.Warn("rate limit check failed", "error", err, "key", key)
		return true
	}

	return count.Val() <= int64(rl.config.Requests)
}

// ClientIPKeyFunc keys the budget by originating client IP.
func ClientIPKeyFunc(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return "ip:" + strings.TrimSpace(xff[:idx])
		}
		return "ip:" + strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ip:" + strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + ip
}

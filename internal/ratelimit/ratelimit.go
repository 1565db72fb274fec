package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/okravets/contactsbook/internal/logging"
)

// Limiter is a fixed-window per-caller rate limiter backed by Redis. When
// Redis is unavailable requests are let through.
type Limiter struct {
	Redis *redis.Client
}

// Limit allows at most max requests per window for each caller of the
// named route. The caller key comes from the context (set by the auth
// middleware), falling back to the client IP.
func (l *Limiter) Limit(route string, max int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("rl:%s:%s", route, callerKey(c))

			n, err := l.Redis.Incr(ctx, key).Result()
			if err != nil {
				logging.FromContext(ctx).Warn("rate limiter unavailable", "error", err)
				return next(c)
			}
			if n == 1 {
				l.Redis.Expire(ctx, key, window)
			}
			if n > int64(max) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
			}
			return next(c)
		}
	}
}

func callerKey(c echo.Context) string {
	if id := c.Get("userID"); id != nil {
		return fmt.Sprint(id)
	}
	return c.RealIP()
}

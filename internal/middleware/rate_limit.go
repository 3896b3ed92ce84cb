package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/server"
)

// RateLimitMiddleware enforces a fixed-window per-IP request budget
// backed by Redis, so the limit holds across instances.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit returns the enforcement middleware. The counter key is the
// client IP; the first request in a window sets the expiry. When Redis
// is unavailable the limiter fails open, availability over strictness.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	limit := int64(r.server.Config.Server.RateLimitRequests)
	window := time.Duration(r.server.Config.Server.RateLimitWindowMinutes) * time.Minute

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:%s", c.RealIP())

			count, err := r.server.Redis.Incr(ctx, key).Result()
			if err != nil {
				GetLogger(c).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if count == 1 {
				r.server.Redis.Expire(ctx, key, window)
			}

			if count > limit {
				r.RecordRateLimitHit(c.Path())
				return errs.NewTooManyRequestsError("Too many requests from this IP, please try again in an hour!")
			}

			return next(c)
		}
	}
}

// RecordRateLimitHit emits a custom APM event when a client runs over
// the budget.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

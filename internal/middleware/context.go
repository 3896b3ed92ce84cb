package middleware

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/logger"
	"github.com/trailbook-app/trailbook/internal/server"
)

const (
	// PrincipalKey stores the authenticated *domain.User set by the
	// Protect middleware.
	PrincipalKey = "principal"

	// UserIDKey and UserRoleKey hold string forms of the principal's
	// identity for logging and tracing.
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"

	// LoggerKey stores the request-scoped logger.
	LoggerKey = "logger"
)

// ContextEnhancer builds a request-scoped logger carrying correlation
// fields (request_id, method, path, ip, trace ids, user identity) and
// stores it in both the Echo context and the Go request context.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext returns the Echo middleware. It must run after
// RequestID and the New Relic middleware, and before any handler that
// calls GetLogger.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := GetRequestID(c)

			contextLogger := ce.server.Logger.With().
				Str("request_id", requestID).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			if userID := GetUserID(c); userID != "" {
				contextLogger = contextLogger.With().Str("user_id", userID).Logger()
			}
			if userRole, ok := c.Get(UserRoleKey).(string); ok && userRole != "" {
				contextLogger = contextLogger.With().Str("user_role", userRole).Logger()
			}

			c.Set(LoggerKey, &contextLogger)

			// Also expose the logger through the request context so
			// code that only sees context.Context can log with
			// correlation fields.
			ctx := context.WithValue(c.Request().Context(), LoggerKey, &contextLogger) //nolint:staticcheck
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// SetPrincipal records the authenticated user on the request.
func SetPrincipal(c echo.Context, user *domain.User) {
	c.Set(PrincipalKey, user)
	c.Set(UserIDKey, strconv.FormatInt(user.ID, 10))
	c.Set(UserRoleKey, string(user.Role))
}

// GetPrincipal returns the authenticated user, or nil on routes that
// did not pass through Protect.
func GetPrincipal(c echo.Context) *domain.User {
	if user, ok := c.Get(PrincipalKey).(*domain.User); ok {
		return user
	}
	return nil
}

// GetUserID reads the principal's id as a string, or "" when the
// request is anonymous.
func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetLogger retrieves the request-scoped logger from Echo context.
// If EnhanceContext didn't run, it returns a no-op logger.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}

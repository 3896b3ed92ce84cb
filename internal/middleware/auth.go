package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trailbook-app/trailbook/internal/auth"
	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/server"
)

// CookieName is the auth cookie set at login alongside the JSON token.
const CookieName = "jwt"

// UserLoader resolves a token subject into an account. The users
// repository satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// AuthMiddleware authenticates requests with the app's own JWTs and
// enforces role requirements on protected routes.
type AuthMiddleware struct {
	server *server.Server
	users  UserLoader
	issuer *auth.TokenIssuer
}

func NewAuthMiddleware(s *server.Server, users UserLoader) *AuthMiddleware {
	ttl := time.Duration(s.Config.Auth.TokenTTLHours) * time.Hour
	return &AuthMiddleware{
		server: s,
		users:  users,
		issuer: auth.NewTokenIssuer(s.Config.Auth.SecretKey, ttl),
	}
}

// Issuer exposes the token issuer so the auth service signs tokens
// with the same key and lifetime the middleware verifies with.
func (am *AuthMiddleware) Issuer() *auth.TokenIssuer {
	return am.issuer
}

// extractToken reads the bearer token from the Authorization header,
// falling back to the auth cookie for browser clients.
func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

var (
	codeExpiredToken = "EXPIRED_TOKEN"
	codeInvalidToken = "INVALID_TOKEN"
	codeStaleToken   = "STALE_TOKEN"
)

// Protect rejects unauthenticated requests. On success the account is
// stored on the context as the request principal.
//
// A valid signature alone is not enough: the account must still exist,
// be active, and must not have changed its password after the token
// was issued. That last check is what invalidates every outstanding
// token on password change.
func (am *AuthMiddleware) Protect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return errs.NewUnauthorizedError("You are not logged in! Please log in to get access.", nil)
			}

			claims, err := am.issuer.Parse(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return errs.NewUnauthorizedError("Your token has expired! Please log in again.", &codeExpiredToken)
				}
				return errs.NewUnauthorizedError("Invalid token. Please log in again!", &codeInvalidToken)
			}

			user, err := am.users.GetByID(c.Request().Context(), claims.Sub)
			if err != nil || user == nil || !user.Active {
				return errs.NewUnauthorizedError("The user belonging to this token does no longer exist.", nil)
			}

			if claims.IssuedAt != nil && user.PasswordChangedAfter(claims.IssuedAt.Time) {
				return errs.NewUnauthorizedError("User recently changed password! Please log in again.", &codeStaleToken)
			}

			SetPrincipal(c, user)

			GetLogger(c).Debug().
				Int64("user_id", user.ID).
				Str("user_role", string(user.Role)).
				Msg("user authenticated successfully")

			return next(c)
		}
	}
}

// RequireRoles allows only principals holding one of the given roles.
// It must be registered after Protect; a missing principal means the
// route was wired wrong and is treated as a server fault, not a 403.
func (am *AuthMiddleware) RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetPrincipal(c)
			if user == nil {
				am.server.Logger.Error().
					Str("path", c.Path()).
					Msg("RequireRoles used without Protect")
				return errs.NewInternalServerError()
			}

			if !user.HasRole(roles...) {
				return errs.NewForbiddenError("You do not have permission to perform this action")
			}

			return next(c)
		}
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailbook-app/trailbook/internal/auth"
	"github.com/trailbook-app/trailbook/internal/config"
	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/server"
)

type stubUserLoader struct {
	user *domain.User
	err  error
}

func (s *stubUserLoader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func activeUser() *domain.User {
	return &domain.User{
		ID:     42,
		Name:   "Test User",
		Email:  "test@example.com",
		Role:   domain.RoleUser,
		Active: true,
	}
}

func newTestAuthMiddleware(users UserLoader) *AuthMiddleware {
	log := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Auth: config.AuthConfig{
				SecretKey:     "test-secret-key-at-least-32-bytes-long",
				TokenTTLHours: 1,
			},
		},
		Logger: &log,
	}
	return NewAuthMiddleware(s, users)
}

func invoke(mw echo.MiddlewareFunc, req *http.Request) (echo.Context, bool, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func requireHTTPError(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, status, httpErr.Status)
	return httpErr
}

func TestProtectNoToken(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{user: activeUser()})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, called, err := invoke(am.Protect(), req)

	assert.False(t, called)
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "You are not logged in! Please log in to get access.", httpErr.Message)
}

func TestProtectValidBearerToken(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{user: activeUser()})

	token, err := am.Issuer().Sign(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	c, called, err := invoke(am.Protect(), req)

	require.NoError(t, err)
	assert.True(t, called)

	principal := GetPrincipal(c)
	require.NotNil(t, principal)
	assert.Equal(t, int64(42), principal.ID)
}

func TestProtectTokenFromCookie(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{user: activeUser()})

	token, err := am.Issuer().Sign(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	_, called, err := invoke(am.Protect(), req)

	require.NoError(t, err)
	assert.True(t, called)
}

func TestProtectExpiredToken(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{user: activeUser()})

	expired := auth.NewTokenIssuer("test-secret-key-at-least-32-bytes-long", -time.Minute)
	token, err := expired.Sign(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	_, called, err := invoke(am.Protect(), req)

	assert.False(t, called)
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "EXPIRED_TOKEN", httpErr.Code)
	assert.Equal(t, "Your token has expired! Please log in again.", httpErr.Message)
}

func TestProtectInvalidToken(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{user: activeUser()})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not.a.token")

	_, called, err := invoke(am.Protect(), req)

	assert.False(t, called)
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "INVALID_TOKEN", httpErr.Code)
}

func TestProtectDeletedUser(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{err: errors.New("no rows in result set")})

	token, err := am.Issuer().Sign(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	_, called, err := invoke(am.Protect(), req)

	assert.False(t, called)
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "The user belonging to this token does no longer exist.", httpErr.Message)
}

func TestProtectInactiveUser(t *testing.T) {
	user := activeUser()
	user.Active = false
	am := newTestAuthMiddleware(&stubUserLoader{user: user})

	token, err := am.Issuer().Sign(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	_, called, err := invoke(am.Protect(), req)

	assert.False(t, called)
	requireHTTPError(t, err, http.StatusUnauthorized)
}

func TestProtectStaleTokenAfterPasswordChange(t *testing.T) {
	user := activeUser()
	changed := time.Now().Add(time.Hour)
	user.PasswordChangedAt = &changed
	am := newTestAuthMiddleware(&stubUserLoader{user: user})

	token, err := am.Issuer().Sign(42)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	_, called, err := invoke(am.Protect(), req)

	assert.False(t, called)
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "STALE_TOKEN", httpErr.Code)
	assert.Equal(t, "User recently changed password! Please log in again.", httpErr.Message)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	user := activeUser()
	user.Role = domain.RoleAdmin
	SetPrincipal(c, user)

	called := false
	err := am.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide)(func(c echo.Context) error {
		called = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	SetPrincipal(c, activeUser())

	err := am.RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		return nil
	})(c)

	httpErr := requireHTTPError(t, err, http.StatusForbidden)
	assert.Equal(t, "You do not have permission to perform this action", httpErr.Message)
}

func TestRequireRolesWithoutProtect(t *testing.T) {
	am := newTestAuthMiddleware(&stubUserLoader{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := am.RequireRoles(domain.RoleAdmin)(func(c echo.Context) error {
		return nil
	})(c)

	requireHTTPError(t, err, http.StatusInternalServerError)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/middleware"
	"github.com/trailbook-app/trailbook/internal/service"
)

// AuthHandler serves signup, login and the password lifecycle
// endpoints. Every successful call responds with a fresh token, both
// in the envelope and as an http-only cookie.
type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(h Handler, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: h, auth: auth}
}

// setTokenCookie mirrors the envelope token in an http-only cookie so
// browser clients stay authenticated without storing the token
// themselves.
func (h *AuthHandler) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.auth.TokenTTL()),
		HttpOnly: true,
		Secure:   h.server.Config.Observability.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// Signup serves POST /signup.
func (h *AuthHandler) Signup() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *domain.SignupRequest) (*Envelope, error) {
		user, token, err := h.auth.Signup(c.Request().Context(), req)
		if err != nil {
			return nil, err
		}

		h.setTokenCookie(c, token)
		return TokenOK(token, user), nil
	}, http.StatusCreated)
}

// Login serves POST /login.
func (h *AuthHandler) Login() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *domain.LoginRequest) (*Envelope, error) {
		user, token, err := h.auth.Login(c.Request().Context(), req)
		if err != nil {
			return nil, err
		}

		h.setTokenCookie(c, token)
		return TokenOK(token, user), nil
	}, http.StatusOK)
}

// Logout serves GET /logout. It overwrites the auth cookie with an
// already-expired one; the envelope token stays empty.
func (h *AuthHandler) Logout() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-time.Hour),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.server.Config.Observability.IsProduction(),
			SameSite: http.SameSiteLaxMode,
		})

		return &Envelope{Status: "success"}, nil
	}, http.StatusOK)
}

// ForgotPassword serves POST /forgot-password. The response is the
// same whether or not the email matched a user once the reset mail is
// on its way.
func (h *AuthHandler) ForgotPassword() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *domain.ForgotPasswordRequest) (*Envelope, error) {
		if err := h.auth.ForgotPassword(c.Request().Context(), req); err != nil {
			return nil, err
		}

		return &Envelope{
			Status: "success",
			Data:   map[string]interface{}{"message": "Token sent to email!"},
		}, nil
	}, http.StatusOK)
}

// ResetPassword serves PATCH /reset-password/:token. The token is the
// plain value from the reset email, carried in the path.
func (h *AuthHandler) ResetPassword() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *domain.ResetPasswordRequest) (*Envelope, error) {
		user, token, err := h.auth.ResetPassword(c.Request().Context(), c.Param("token"), req)
		if err != nil {
			return nil, err
		}

		h.setTokenCookie(c, token)
		return TokenOK(token, user), nil
	}, http.StatusOK)
}

// UpdatePassword serves PATCH /update-password for the logged-in
// user.
func (h *AuthHandler) UpdatePassword() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *domain.UpdatePasswordRequest) (*Envelope, error) {
		principal := middleware.GetPrincipal(c)
		if principal == nil {
			return nil, errs.NewInternalServerError()
		}

		user, token, err := h.auth.UpdatePassword(c.Request().Context(), principal, req)
		if err != nil {
			return nil, err
		}

		h.setTokenCookie(c, token)
		return TokenOK(token, user), nil
	}, http.StatusOK)
}

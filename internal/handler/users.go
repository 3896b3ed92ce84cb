package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/middleware"
	"github.com/trailbook-app/trailbook/internal/service"
)

// UsersHandler serves the self-service account endpoints plus the
// admin CRUD routes through the embedded Resource. POST on the admin
// collection intentionally fails; the service directs callers to
// signup.
type UsersHandler struct {
	Handler
	*Resource[domain.User, domain.CreateUserRequest, *domain.CreateUserRequest, domain.UpdateUserRequest, *domain.UpdateUserRequest]
	users *service.UsersService
}

func NewUsersHandler(h Handler, users *service.UsersService) *UsersHandler {
	return &UsersHandler{
		Handler: h,
		Resource: NewResource[domain.User, domain.CreateUserRequest, *domain.CreateUserRequest, domain.UpdateUserRequest, *domain.UpdateUserRequest](
			h, "user", "users", users, ResourceHooks[domain.CreateUserRequest]{},
		),
		users: users,
	}
}

// principal returns the authenticated user or an internal error when
// the route was registered without Protect.
func principal(c echo.Context) (*domain.User, error) {
	user := middleware.GetPrincipal(c)
	if user == nil {
		return nil, errs.NewInternalServerError()
	}
	return user, nil
}

// Me serves GET /me, returning the authenticated user's own document.
func (h *UsersHandler) Me() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		user, err := principal(c)
		if err != nil {
			return nil, err
		}
		return OK("user", user), nil
	}, http.StatusOK)
}

// UpdateMe serves PATCH /update-me. Role and password keys in the body
// are dropped by the request type.
func (h *UsersHandler) UpdateMe() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *domain.UpdateMeRequest) (*Envelope, error) {
		user, err := principal(c)
		if err != nil {
			return nil, err
		}

		updated, err := h.users.UpdateMe(c.Request().Context(), user.ID, req)
		if err != nil {
			return nil, err
		}
		return OK("user", updated), nil
	}, http.StatusOK)
}

// DeleteMe serves DELETE /delete-me, deactivating the account rather
// than removing the row.
func (h *UsersHandler) DeleteMe() echo.HandlerFunc {
	return HandleNoContent(h.Handler, func(c echo.Context, _ *EmptyRequest) error {
		user, err := principal(c)
		if err != nil {
			return err
		}
		return h.users.DeleteMe(c.Request().Context(), user.ID)
	}, http.StatusNoContent)
}

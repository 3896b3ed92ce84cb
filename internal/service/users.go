package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/doug-martin/goqu/v9"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/repository"
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/sqlerr"
)

// UsersService implements account administration and the self-service
// profile operations.
type UsersService struct {
	server *server.Server
	users  *repository.UsersRepository
}

func NewUsersService(s *server.Server, users *repository.UsersRepository) *UsersService {
	return &UsersService{
		server: s,
		users:  users,
	}
}

func (s *UsersService) List(ctx context.Context, values url.Values) ([]domain.User, error) {
	users, err := s.users.List(ctx, values)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return users, nil
}

func (s *UsersService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return user, nil
}

// Create always fails: accounts are only created through signup so
// they get a password and a welcome email. It exists to complete the
// resource contract for the admin routes.
func (s *UsersService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	return nil, &errs.HTTPError{
		Code:        "ROUTE_NOT_DEFINED",
		Message:     "This route is not defined! Please use /signup instead",
		Status:      http.StatusInternalServerError,
		Operational: true,
	}
}

// UpdateMe applies a self-service profile update. Only name, email and
// photo can change through here; the request type has no other fields,
// so role or password keys in the body are simply dropped. An empty
// update returns the account unchanged.
func (s *UsersService) UpdateMe(ctx context.Context, userID int64, req *domain.UpdateMeRequest) (*domain.User, error) {
	changes := goqu.Record{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	if req.Photo != nil {
		changes["photo"] = *req.Photo
	}

	if len(changes) == 0 {
		return s.Get(ctx, userID)
	}

	user, err := s.users.Update(ctx, userID, changes)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return user, nil
}

// DeleteMe deactivates the caller's account. The row stays, so
// reviews keep their author, but the account vanishes from lists and
// can no longer log in.
func (s *UsersService) DeleteMe(ctx context.Context, userID int64) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return sqlerr.HandleError(err)
	}
	return nil
}

// Update is the admin update; unlike UpdateMe it may change role and
// active status. Passwords never change through this path.
func (s *UsersService) Update(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	changes := goqu.Record{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	if req.Photo != nil {
		changes["photo"] = *req.Photo
	}
	if req.Role != nil {
		changes["role"] = string(*req.Role)
	}
	if req.Active != nil {
		changes["active"] = *req.Active
	}

	if len(changes) == 0 {
		return s.Get(ctx, id)
	}

	user, err := s.users.Update(ctx, id, changes)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return user, nil
}

// Delete removes an account permanently.
func (s *UsersService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return sqlerr.HandleError(err)
	}
	return nil
}

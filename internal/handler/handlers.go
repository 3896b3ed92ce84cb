package handler

import (
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/service"
)

// Handlers aggregates every HTTP handler for route registration.
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Users   *UsersHandler
	Tours   *ToursHandler
	Reviews *ReviewsHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	h := NewHandler(s)

	return &Handlers{
		Health:  NewHealthHandler(s),
		Auth:    NewAuthHandler(h, services.Auth),
		Users:   NewUsersHandler(h, services.Users),
		Tours:   NewToursHandler(h, services.Tours),
		Reviews: NewReviewsHandler(h, services.Reviews),
	}
}

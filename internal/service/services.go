package service

import (
	"github.com/trailbook-app/trailbook/internal/auth"
	"github.com/trailbook-app/trailbook/internal/lib/job"
	"github.com/trailbook-app/trailbook/internal/repository"
	"github.com/trailbook-app/trailbook/internal/server"
)

type Services struct {
	Auth    *AuthService
	Users   *UsersService
	Tours   *ToursService
	Reviews *ReviewsService
	Job     *job.JobService
}

// NewService builds the business layer. issuer comes from the auth
// middleware so login issues tokens with the same key and lifetime
// Protect verifies.
func NewService(s *server.Server, repos *repository.Repositories, issuer *auth.TokenIssuer) (*Services, error) {
	return &Services{
		Auth:    NewAuthService(s, repos.Users, issuer),
		Users:   NewUsersService(s, repos.Users),
		Tours:   NewToursService(s, repos.Tours, repos.Reviews),
		Reviews: NewReviewsService(s, repos.Reviews, repos.Tours),
		Job:     s.Job,
	}, nil
}

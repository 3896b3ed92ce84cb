package repository

import (
	"github.com/trailbook-app/trailbook/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users   *UsersRepository
	Tours   *ToursRepository
	Reviews *ReviewsRepository
}

// NewRepositories constructs the repository container on top of the
// shared connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Users:   NewUsersRepository(s.DB.Pool),
		Tours:   NewToursRepository(s.DB.Pool),
		Reviews: NewReviewsRepository(s.DB.Pool),
	}
}

package service

import (
	"context"
	"net/url"

	"github.com/doug-martin/goqu/v9"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/repository"
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/sqlerr"
)

// ReviewsService implements review CRUD and keeps each tour's rating
// aggregates in step with its reviews.
type ReviewsService struct {
	server  *server.Server
	reviews *repository.ReviewsRepository
	tours   *repository.ToursRepository
}

func NewReviewsService(s *server.Server, reviews *repository.ReviewsRepository, tours *repository.ToursRepository) *ReviewsService {
	return &ReviewsService{
		server:  s,
		reviews: reviews,
		tours:   tours,
	}
}

func (s *ReviewsService) List(ctx context.Context, values url.Values, tourID *int64) ([]domain.Review, error) {
	reviews, err := s.reviews.List(ctx, values, tourID)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return reviews, nil
}

func (s *ReviewsService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return review, nil
}

// Create inserts a review and refreshes the tour's aggregates in the
// same request. A second review for the same tour by the same user
// hits the unique pair constraint and surfaces as a conflict.
func (s *ReviewsService) Create(ctx context.Context, req *domain.CreateReviewRequest) (*domain.Review, error) {
	if req.TourID == 0 {
		return nil, errs.NewBadRequestError("A review must belong to a tour", nil, []errs.FieldError{
			{Field: "tour_id", Error: "is required"},
		})
	}

	review, err := s.reviews.Create(ctx, req)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if err := s.recalculateTourRatings(ctx, review.TourID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewsService) Update(ctx context.Context, id int64, req *domain.UpdateReviewRequest) (*domain.Review, error) {
	changes := goqu.Record{}
	if req.Review != nil {
		changes["review"] = *req.Review
	}
	if req.Rating != nil {
		changes["rating"] = *req.Rating
	}

	if len(changes) == 0 {
		return s.Get(ctx, id)
	}

	review, err := s.reviews.Update(ctx, id, changes)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	if err := s.recalculateTourRatings(ctx, review.TourID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewsService) Delete(ctx context.Context, id int64) error {
	tourID, err := s.reviews.Delete(ctx, id)
	if err != nil {
		return sqlerr.HandleError(err)
	}
	return s.recalculateTourRatings(ctx, tourID)
}

// recalculateTourRatings recomputes a tour's rating count and average
// from its reviews. With no reviews left both fall to zero.
func (s *ReviewsService) recalculateTourRatings(ctx context.Context, tourID int64) error {
	stats, err := s.reviews.TourRatingStats(ctx, tourID)
	if err != nil {
		return sqlerr.HandleError(err)
	}
	if err := s.tours.UpdateRatings(ctx, tourID, stats); err != nil {
		return sqlerr.HandleError(err)
	}
	return nil
}

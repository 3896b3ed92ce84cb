package handler

import (
	"context"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/service"
)

// ReviewsHandler serves the reviews collection. The routes are
// registered twice, flat under /reviews and nested under
// /tours/:tourId/reviews; the hooks fold the tour parameter into the
// generic handlers.
type ReviewsHandler struct {
	Handler
	*Resource[domain.Review, domain.CreateReviewRequest, *domain.CreateReviewRequest, domain.UpdateReviewRequest, *domain.UpdateReviewRequest]
	reviews *service.ReviewsService
}

// reviewsStore adapts ReviewsService to the resource contract. Tour
// scoping arrives through the query values, so the explicit tour
// filter stays unset here.
type reviewsStore struct {
	svc *service.ReviewsService
}

func (s reviewsStore) List(ctx context.Context, values url.Values) ([]domain.Review, error) {
	return s.svc.List(ctx, values, nil)
}

func (s reviewsStore) Get(ctx context.Context, id int64) (*domain.Review, error) {
	return s.svc.Get(ctx, id)
}

func (s reviewsStore) Create(ctx context.Context, req *domain.CreateReviewRequest) (*domain.Review, error) {
	return s.svc.Create(ctx, req)
}

func (s reviewsStore) Update(ctx context.Context, id int64, req *domain.UpdateReviewRequest) (*domain.Review, error) {
	return s.svc.Update(ctx, id, req)
}

func (s reviewsStore) Delete(ctx context.Context, id int64) error {
	return s.svc.Delete(ctx, id)
}

func NewReviewsHandler(h Handler, reviews *service.ReviewsService) *ReviewsHandler {
	hooks := ResourceHooks[domain.CreateReviewRequest]{
		BeforeCreate: setReviewDefaults,
		ScopeList:    scopeReviewsToTour,
	}

	return &ReviewsHandler{
		Handler: h,
		Resource: NewResource[domain.Review, domain.CreateReviewRequest, *domain.CreateReviewRequest, domain.UpdateReviewRequest, *domain.UpdateReviewRequest](
			h, "review", "reviews", reviewsStore{svc: reviews}, hooks,
		),
		reviews: reviews,
	}
}

// setReviewDefaults fills the author from the authenticated principal
// and, on the nested route, the tour from the path. A tour id in the
// path wins over one in the body.
func setReviewDefaults(c echo.Context, req *domain.CreateReviewRequest) error {
	user, err := principal(c)
	if err != nil {
		return err
	}
	req.UserID = user.ID

	if raw := c.Param("tourId"); raw != "" {
		tourID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tourID < 1 {
			return errs.NewBadRequestError("Invalid tourId parameter", nil, nil)
		}
		req.TourID = tourID
	}
	return nil
}

// scopeReviewsToTour constrains the nested list route to one tour by
// injecting the path parameter as a filter.
func scopeReviewsToTour(c echo.Context, values url.Values) {
	if raw := c.Param("tourId"); raw != "" {
		values.Set("tour_id", raw)
	}
}

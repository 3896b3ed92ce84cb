package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/lib/utils"
	"github.com/trailbook-app/trailbook/internal/repository"
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/sqlerr"
)

// ToursService implements tour CRUD plus the aggregate and geospatial
// queries.
type ToursService struct {
	server  *server.Server
	tours   *repository.ToursRepository
	reviews *repository.ReviewsRepository
}

func NewToursService(s *server.Server, tours *repository.ToursRepository, reviews *repository.ReviewsRepository) *ToursService {
	return &ToursService{
		server:  s,
		tours:   tours,
		reviews: reviews,
	}
}

func (s *ToursService) List(ctx context.Context, values url.Values) ([]domain.Tour, error) {
	tours, err := s.tours.List(ctx, values)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return tours, nil
}

// Get loads a single tour with its reviews attached.
func (s *ToursService) Get(ctx context.Context, id int64) (*domain.Tour, error) {
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	reviews, err := s.reviews.List(ctx, url.Values{}, &id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	tour.Reviews = reviews

	return tour, nil
}

func (s *ToursService) Create(ctx context.Context, req *domain.CreateTourRequest) (*domain.Tour, error) {
	record := goqu.Record{
		"name":           req.Name,
		"slug":           utils.Slugify(req.Name),
		"duration":       req.Duration,
		"max_group_size": req.MaxGroupSize,
		"difficulty":     req.Difficulty,
		"price":          req.Price,
		"price_discount": req.PriceDiscount,
		"summary":        req.Summary,
		"description":    req.Description,
		"image_cover":    req.ImageCover,
		"secret_tour":    req.SecretTour,
		"start_address":  req.StartAddress,
		"start_lat":      req.StartLat,
		"start_lng":      req.StartLng,
	}
	if req.Images != nil {
		record["images"] = req.Images
	}
	if req.StartDates != nil {
		record["start_dates"] = req.StartDates
	}

	tour, err := s.tours.Create(ctx, record)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return tour, nil
}

// Update applies a partial update. The discount/price relation is
// re-checked against the values the row will end up with, since
// either side may change independently.
func (s *ToursService) Update(ctx context.Context, id int64, req *domain.UpdateTourRequest) (*domain.Tour, error) {
	current, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	price := current.Price
	if req.Price != nil {
		price = *req.Price
	}
	discount := current.PriceDiscount
	if req.PriceDiscount != nil {
		discount = req.PriceDiscount
	}
	if discount != nil && *discount >= price {
		return nil, errs.NewBadRequestError("Discount price should be below regular price", nil, []errs.FieldError{
			{Field: "price_discount", Error: "must be below the regular price"},
		})
	}

	changes := goqu.Record{}
	if req.Name != nil {
		changes["name"] = *req.Name
		changes["slug"] = utils.Slugify(*req.Name)
	}
	if req.Duration != nil {
		changes["duration"] = *req.Duration
	}
	if req.MaxGroupSize != nil {
		changes["max_group_size"] = *req.MaxGroupSize
	}
	if req.Difficulty != nil {
		changes["difficulty"] = *req.Difficulty
	}
	if req.Price != nil {
		changes["price"] = *req.Price
	}
	if req.PriceDiscount != nil {
		changes["price_discount"] = *req.PriceDiscount
	}
	if req.Summary != nil {
		changes["summary"] = *req.Summary
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.ImageCover != nil {
		changes["image_cover"] = *req.ImageCover
	}
	if req.Images != nil {
		changes["images"] = *req.Images
	}
	if req.StartDates != nil {
		changes["start_dates"] = *req.StartDates
	}
	if req.SecretTour != nil {
		changes["secret_tour"] = *req.SecretTour
	}
	if req.StartAddress != nil {
		changes["start_address"] = *req.StartAddress
	}
	if req.StartLat != nil {
		changes["start_lat"] = *req.StartLat
	}
	if req.StartLng != nil {
		changes["start_lng"] = *req.StartLng
	}

	if len(changes) == 0 {
		return current, nil
	}

	tour, err := s.tours.Update(ctx, id, changes)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return tour, nil
}

func (s *ToursService) Delete(ctx context.Context, id int64) error {
	if err := s.tours.Delete(ctx, id); err != nil {
		return sqlerr.HandleError(err)
	}
	return nil
}

func (s *ToursService) Stats(ctx context.Context) ([]domain.TourStats, error) {
	stats, err := s.tours.Stats(ctx)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return stats, nil
}

func (s *ToursService) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	plan, err := s.tours.MonthlyPlan(ctx, year)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return plan, nil
}

// parseLatLng splits a "lat,lng" path segment into coordinates.
func parseLatLng(latlng string) (lat, lng float64, err error) {
	parts := strings.Split(latlng, ",")
	if len(parts) != 2 {
		return 0, 0, errs.NewBadRequestError("Please provide latitude and longitude in the format lat,lng.", nil, nil)
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, errs.NewBadRequestError("Please provide latitude and longitude in the format lat,lng.", nil, nil)
	}
	return lat, lng, nil
}

// earthRadiusForUnit maps the unit path segment to the earth radius
// the distance math runs in. Only "mi" and "km" are accepted.
func earthRadiusForUnit(unit string) (float64, error) {
	switch unit {
	case "mi":
		return repository.EarthRadiusMi, nil
	case "km":
		return repository.EarthRadiusKm, nil
	default:
		return 0, errs.NewBadRequestError("Please provide the unit as mi or km.", nil, nil)
	}
}

// Within lists tours starting inside a radius around a point. distance
// is in the same unit as unit.
func (s *ToursService) Within(ctx context.Context, distance float64, latlng, unit string) ([]domain.Tour, error) {
	if distance <= 0 {
		return nil, errs.NewBadRequestError("Please provide a positive distance.", nil, nil)
	}
	lat, lng, err := parseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	radius, err := earthRadiusForUnit(unit)
	if err != nil {
		return nil, err
	}

	tours, err := s.tours.Within(ctx, lat, lng, distance, radius)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return tours, nil
}

// Distances lists every located tour with its distance from a point,
// nearest first.
func (s *ToursService) Distances(ctx context.Context, latlng, unit string) ([]domain.TourDistance, error) {
	lat, lng, err := parseLatLng(latlng)
	if err != nil {
		return nil, err
	}
	radius, err := earthRadiusForUnit(unit)
	if err != nil {
		return nil, err
	}

	distances, err := s.tours.Distances(ctx, lat, lng, radius)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return distances, nil
}

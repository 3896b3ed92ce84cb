package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/service"
)

// ToursHandler serves the tours collection: generic CRUD through the
// embedded Resource plus the analytics and geospatial endpoints.
type ToursHandler struct {
	Handler
	*Resource[domain.Tour, domain.CreateTourRequest, *domain.CreateTourRequest, domain.UpdateTourRequest, *domain.UpdateTourRequest]
	tours *service.ToursService
}

func NewToursHandler(h Handler, tours *service.ToursService) *ToursHandler {
	return &ToursHandler{
		Handler: h,
		Resource: NewResource[domain.Tour, domain.CreateTourRequest, *domain.CreateTourRequest, domain.UpdateTourRequest, *domain.UpdateTourRequest](
			h, "tour", "tours", tours, ResourceHooks[domain.CreateTourRequest]{},
		),
		tours: tours,
	}
}

// AliasTopTours presets the list query for the /top-5-cheap route
// before the generic List handler runs.
func AliasTopTours(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := url.Values{}
		q.Set("limit", "5")
		q.Set("sort", "-ratings_average,price")
		q.Set("fields", "name,price,ratings_average,summary,difficulty")
		c.Request().URL.RawQuery = q.Encode()
		return next(c)
	}
}

// Stats serves GET /stats: per-difficulty aggregates over well-rated
// tours.
func (h *ToursHandler) Stats() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		stats, err := h.tours.Stats(c.Request().Context())
		if err != nil {
			return nil, err
		}
		return OK("stats", stats), nil
	}, http.StatusOK)
}

// MonthlyPlan serves GET /monthly-plan/:year: tour starts bucketed by
// month for one year.
func (h *ToursHandler) MonthlyPlan() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil || year < 1 {
			return nil, errs.NewBadRequestError("Invalid year parameter", nil, nil)
		}

		plan, err := h.tours.MonthlyPlan(c.Request().Context(), year)
		if err != nil {
			return nil, err
		}
		return OK("plan", plan), nil
	}, http.StatusOK)
}

// Within serves GET /tours-within/:distance/center/:latlng/unit/:unit,
// listing tours whose start location falls inside the radius.
func (h *ToursHandler) Within() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		distance, err := strconv.ParseFloat(c.Param("distance"), 64)
		if err != nil {
			return nil, errs.NewBadRequestError("Invalid distance parameter", nil, nil)
		}

		tours, err := h.tours.Within(c.Request().Context(), distance, c.Param("latlng"), c.Param("unit"))
		if err != nil {
			return nil, err
		}
		return ListOK("tours", len(tours), tours), nil
	}, http.StatusOK)
}

// Distances serves GET /distances/:latlng/unit/:unit: every tour with
// its distance from the given point, nearest first.
func (h *ToursHandler) Distances() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		distances, err := h.tours.Distances(c.Request().Context(), c.Param("latlng"), c.Param("unit"))
		if err != nil {
			return nil, err
		}
		return OK("distances", distances), nil
	}, http.StatusOK)
}

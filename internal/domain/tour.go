package domain

import (
	"time"

	"github.com/trailbook-app/trailbook/internal/validation"
)

// Tour is a bookable trip. RatingsAverage and RatingsQuantity are
// derived from reviews and never written directly by clients.
type Tour struct {
	ID              int64       `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Slug            string      `db:"slug" json:"slug"`
	Duration        int         `db:"duration" json:"duration"`
	MaxGroupSize    int         `db:"max_group_size" json:"max_group_size"`
	Difficulty      string      `db:"difficulty" json:"difficulty"`
	RatingsAverage  float64     `db:"ratings_average" json:"ratings_average"`
	RatingsQuantity int         `db:"ratings_quantity" json:"ratings_quantity"`
	Price           float64     `db:"price" json:"price"`
	PriceDiscount   *float64    `db:"price_discount" json:"price_discount,omitempty"`
	Summary         string      `db:"summary" json:"summary"`
	Description     *string     `db:"description" json:"description,omitempty"`
	ImageCover      string      `db:"image_cover" json:"image_cover"`
	Images          []string    `db:"images" json:"images"`
	StartDates      []time.Time `db:"start_dates" json:"start_dates"`
	SecretTour      bool        `db:"secret_tour" json:"-"`
	StartAddress    *string     `db:"start_address" json:"start_address,omitempty"`
	StartLat        *float64    `db:"start_lat" json:"start_lat,omitempty"`
	StartLng        *float64    `db:"start_lng" json:"start_lng,omitempty"`
	Version         int         `db:"version" json:"-"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`

	// Reviews is populated only on single-tour reads.
	Reviews []Review `db:"-" json:"reviews,omitempty"`
}

type CreateTourRequest struct {
	Name          string      `json:"name" validate:"required,min=10,max=40"`
	Duration      int         `json:"duration" validate:"required,gt=0"`
	MaxGroupSize  int         `json:"max_group_size" validate:"required,gt=0"`
	Difficulty    string      `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Price         float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount *float64    `json:"price_discount" validate:"omitempty,gt=0,ltfield=Price"`
	Summary       string      `json:"summary" validate:"required"`
	Description   *string     `json:"description"`
	ImageCover    string      `json:"image_cover" validate:"required"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"start_dates"`
	SecretTour    bool        `json:"secret_tour"`
	StartAddress  *string     `json:"start_address"`
	StartLat      *float64    `json:"start_lat" validate:"omitempty,gte=-90,lte=90"`
	StartLng      *float64    `json:"start_lng" validate:"omitempty,gte=-180,lte=180"`
}

func (r *CreateTourRequest) Validate() error { return validation.Struct(r) }

// UpdateTourRequest is a partial update; nil fields are left alone.
// The discount/price cross-check runs in the service, where the
// current price is known.
type UpdateTourRequest struct {
	Name          *string      `json:"name" validate:"omitempty,min=10,max=40"`
	Duration      *int         `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize  *int         `json:"max_group_size" validate:"omitempty,gt=0"`
	Difficulty    *string      `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	Price         *float64     `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount *float64     `json:"price_discount" validate:"omitempty,gt=0"`
	Summary       *string      `json:"summary"`
	Description   *string      `json:"description"`
	ImageCover    *string      `json:"image_cover"`
	Images        *[]string    `json:"images"`
	StartDates    *[]time.Time `json:"start_dates"`
	SecretTour    *bool        `json:"secret_tour"`
	StartAddress  *string      `json:"start_address"`
	StartLat      *float64     `json:"start_lat" validate:"omitempty,gte=-90,lte=90"`
	StartLng      *float64     `json:"start_lng" validate:"omitempty,gte=-180,lte=180"`
}

func (r *UpdateTourRequest) Validate() error { return validation.Struct(r) }

// TourStats is one aggregate row of the statistics endpoint, grouped
// by difficulty.
type TourStats struct {
	Difficulty string  `db:"difficulty" json:"difficulty"`
	NumTours   int     `db:"num_tours" json:"num_tours"`
	NumRatings int     `db:"num_ratings" json:"num_ratings"`
	AvgRating  float64 `db:"avg_rating" json:"avg_rating"`
	AvgPrice   float64 `db:"avg_price" json:"avg_price"`
	MinPrice   float64 `db:"min_price" json:"min_price"`
	MaxPrice   float64 `db:"max_price" json:"max_price"`
}

// MonthlyPlanEntry reports how many tours start in a given month of a
// year, with the tour names.
type MonthlyPlanEntry struct {
	Month         int      `db:"month" json:"month"`
	NumTourStarts int      `db:"num_tour_starts" json:"num_tour_starts"`
	Tours         []string `db:"tours" json:"tours"`
}

// TourDistance is one row of the distances endpoint: a tour and its
// distance from the query point in the requested unit.
type TourDistance struct {
	ID       int64   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Distance float64 `db:"distance" json:"distance"`
}

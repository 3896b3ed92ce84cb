package domain

import (
	"encoding/json"
	"time"

	"github.com/trailbook-app/trailbook/internal/validation"
)

// ReviewAuthor is the subset of user fields joined into review rows.
type ReviewAuthor struct {
	Name  string `db:"author_name" json:"name"`
	Photo string `db:"author_photo" json:"photo"`
}

// Review is a user's rating of a tour. A user may review a tour only
// once; the (tour_id, user_id) pair is unique. ReviewAuthor is
// embedded anonymously so pgx maps the joined author_name and
// author_photo columns straight onto it.
type Review struct {
	ID     int64   `db:"id" json:"id"`
	Review string  `db:"review" json:"review"`
	Rating float64 `db:"rating" json:"rating"`
	TourID int64   `db:"tour_id" json:"tour_id"`
	UserID int64   `db:"user_id" json:"user_id"`
	ReviewAuthor
	Version   int       `db:"version" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MarshalJSON renders the author fields as a nested "author" object
// rather than the flattened form the embedding would give.
func (r Review) MarshalJSON() ([]byte, error) {
	type payload struct {
		ID        int64        `json:"id"`
		Review    string       `json:"review"`
		Rating    float64      `json:"rating"`
		TourID    int64        `json:"tour_id"`
		UserID    int64        `json:"user_id"`
		Author    ReviewAuthor `json:"author"`
		CreatedAt time.Time    `json:"created_at"`
		UpdatedAt time.Time    `json:"updated_at"`
	}
	return json.Marshal(payload{
		ID:        r.ID,
		Review:    r.Review,
		Rating:    r.Rating,
		TourID:    r.TourID,
		UserID:    r.UserID,
		Author:    r.ReviewAuthor,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	})
}

// CreateReviewRequest may name a tour explicitly; on the nested route
// the tour id from the path wins, and the author is always the
// authenticated user.
type CreateReviewRequest struct {
	Review string  `json:"review" validate:"required"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
	TourID int64   `json:"tour_id" validate:"omitempty,gt=0"`
	UserID int64   `json:"-"`
}

func (r *CreateReviewRequest) Validate() error { return validation.Struct(r) }

type UpdateReviewRequest struct {
	Review *string  `json:"review" validate:"omitempty,min=1"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

func (r *UpdateReviewRequest) Validate() error { return validation.Struct(r) }

// RatingStats is the aggregate a tour's rating columns are refreshed
// from after every review mutation.
type RatingStats struct {
	Quantity int     `db:"quantity"`
	Average  float64 `db:"average"`
}

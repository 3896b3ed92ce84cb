package repository

import (
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailbook-app/trailbook/internal/domain"
)

// fakeRow satisfies pgx.CollectableRow for a single row, so the
// declared column lists can be checked against the domain structs
// they scan into without a database.
type fakeRow struct {
	columns []string
	values  map[string]interface{}
}

func (r *fakeRow) FieldDescriptions() []pgconn.FieldDescription {
	descs := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		descs[i] = pgconn.FieldDescription{Name: c}
	}
	return descs
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	for i, c := range r.columns {
		v, ok := r.values[c]
		if !ok {
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func (r *fakeRow) Values() ([]interface{}, error) {
	out := make([]interface{}, len(r.columns))
	for i, c := range r.columns {
		out[i] = r.values[c]
	}
	return out, nil
}

func (r *fakeRow) RawValues() [][]byte { return nil }

func TestReviewColumnsScanIntoReview(t *testing.T) {
	row := &fakeRow{
		columns: reviewColumns,
		values: map[string]interface{}{
			"id":           int64(7),
			"review":       "Lovely trip",
			"rating":       4.0,
			"tour_id":      int64(3),
			"user_id":      int64(11),
			"author_name":  "Ada",
			"author_photo": "ada.jpg",
		},
	}

	review, err := pgx.RowToStructByNameLax[domain.Review](row)
	require.NoError(t, err)

	assert.Equal(t, int64(7), review.ID)
	assert.Equal(t, "Lovely trip", review.Review)
	assert.Equal(t, 4.0, review.Rating)
	assert.Equal(t, "Ada", review.Name)
	assert.Equal(t, "ada.jpg", review.Photo)
}

func TestTourColumnsScanIntoTour(t *testing.T) {
	row := &fakeRow{
		columns: tourColumns,
		values: map[string]interface{}{
			"id":              int64(1),
			"name":            "The Forest Hiker",
			"difficulty":      "easy",
			"ratings_average": 4.7,
			"price":           397.0,
		},
	}

	tour, err := pgx.RowToStructByNameLax[domain.Tour](row)
	require.NoError(t, err)

	assert.Equal(t, "The Forest Hiker", tour.Name)
	assert.Equal(t, "easy", tour.Difficulty)
	assert.Equal(t, 4.7, tour.RatingsAverage)
	assert.Equal(t, 397.0, tour.Price)
}

func TestUserColumnsScanIntoUser(t *testing.T) {
	row := &fakeRow{
		columns: userColumns,
		values: map[string]interface{}{
			"id":     int64(5),
			"name":   "Ada Lovelace",
			"email":  "ada@example.com",
			"role":   domain.RoleAdmin,
			"active": true,
		},
	}

	user, err := pgx.RowToStructByNameLax[domain.User](row)
	require.NoError(t, err)

	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.True(t, user.Active)
}

func TestUserAuthColumnsScanIntoUser(t *testing.T) {
	row := &fakeRow{
		columns: userAuthColumns,
		values: map[string]interface{}{
			"id":            int64(5),
			"password_hash": "$2a$12$abc",
		},
	}

	user, err := pgx.RowToStructByNameLax[domain.User](row)
	require.NoError(t, err)

	assert.Equal(t, "$2a$12$abc", user.PasswordHash)
}

func TestAggregateColumnsScanIntoRowTypes(t *testing.T) {
	t.Run("tour stats", func(t *testing.T) {
		row := &fakeRow{
			columns: []string{
				"difficulty", "num_tours", "num_ratings",
				"avg_rating", "avg_price", "min_price", "max_price",
			},
			values: map[string]interface{}{"difficulty": "medium", "num_tours": 3},
		}
		stats, err := pgx.RowToStructByNameLax[domain.TourStats](row)
		require.NoError(t, err)
		assert.Equal(t, "medium", stats.Difficulty)
		assert.Equal(t, 3, stats.NumTours)
	})

	t.Run("monthly plan", func(t *testing.T) {
		row := &fakeRow{
			columns: []string{"month", "num_tour_starts", "tours"},
			values: map[string]interface{}{
				"month": 7,
				"tours": []string{"The Forest Hiker"},
			},
		}
		entry, err := pgx.RowToStructByNameLax[domain.MonthlyPlanEntry](row)
		require.NoError(t, err)
		assert.Equal(t, 7, entry.Month)
		assert.Equal(t, []string{"The Forest Hiker"}, entry.Tours)
	})

	t.Run("tour distance", func(t *testing.T) {
		row := &fakeRow{
			columns: []string{"id", "name", "distance"},
			values:  map[string]interface{}{"distance": 12.345},
		}
		dist, err := pgx.RowToStructByNameLax[domain.TourDistance](row)
		require.NoError(t, err)
		assert.Equal(t, 12.345, dist.Distance)
	})
}

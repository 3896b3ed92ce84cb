package repository

import (
	"context"
	"net/url"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/query"
)

var (
	reviewColumns = []string{
		"id", "review", "rating", "tour_id", "user_id",
		"author_name", "author_photo", "created_at", "updated_at",
	}
	reviewFilterable = query.Columns("rating", "tour_id", "user_id")
	reviewSortable   = query.Columns("rating", "created_at")
	reviewSelectable = query.Columns("review", "rating", "tour_id", "user_id", "created_at")
)

type ReviewsRepository struct {
	pool *pgxpool.Pool
}

func NewReviewsRepository(pool *pgxpool.Pool) *ReviewsRepository {
	return &ReviewsRepository{pool: pool}
}

// withAuthor joins the author's public profile fields. The join side
// renames its columns so nothing in the combined row is ambiguous.
func (r *ReviewsRepository) withAuthor() *goqu.SelectDataset {
	authors := builder.From("users").
		Select(
			goqu.C("id").As("author_id"),
			goqu.C("name").As("author_name"),
			goqu.C("photo").As("author_photo"),
		).As("authors")

	return builder.From("reviews").
		Join(authors, goqu.On(goqu.Ex{"authors.author_id": goqu.I("reviews.user_id")}))
}

func (r *ReviewsRepository) collect(ctx context.Context, sql string, args []interface{}) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.Review])
}

func (r *ReviewsRepository) one(ctx context.Context, sql string, args []interface{}) (*domain.Review, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.Review])
}

// List returns reviews with their authors. When tourID is non-nil the
// result is scoped to that tour, which serves the nested route.
func (r *ReviewsRepository) List(ctx context.Context, values url.Values, tourID *int64) ([]domain.Review, error) {
	ds := r.withAuthor()
	if tourID != nil {
		ds = ds.Where(goqu.Ex{"tour_id": *tourID})
	}

	sql, args, err := query.New(ds, values).
		Filter(reviewFilterable).
		Sort(reviewSortable).
		Fields(reviewSelectable, reviewColumns).
		Paginate().
		ToSQL()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, sql, args)
}

func (r *ReviewsRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	sql, args, err := r.withAuthor().
		Select(toIdents(reviewColumns)...).
		Where(goqu.Ex{"reviews.id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

// Create inserts a review and re-reads it with the author joined.
func (r *ReviewsRepository) Create(ctx context.Context, req *domain.CreateReviewRequest) (*domain.Review, error) {
	sql, args, err := builder.Insert("reviews").
		Rows(goqu.Record{
			"review":  req.Review,
			"rating":  req.Rating,
			"tour_id": req.TourID,
			"user_id": req.UserID,
		}).
		Returning(goqu.C("id")).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var id int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ReviewsRepository) Update(ctx context.Context, id int64, changes goqu.Record) (*domain.Review, error) {
	changes["updated_at"] = goqu.L("now()")
	changes["version"] = goqu.L("version + 1")

	sql, args, err := builder.Update("reviews").
		Set(changes).
		Where(goqu.Ex{"id": id}).
		Returning(goqu.C("id")).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var updatedID int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&updatedID); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, updatedID)
}

// Delete removes a review and reports which tour it belonged to so the
// caller can refresh that tour's aggregates.
func (r *ReviewsRepository) Delete(ctx context.Context, id int64) (tourID int64, err error) {
	sql, args, err := builder.Delete("reviews").
		Where(goqu.Ex{"id": id}).
		Returning(goqu.C("tour_id")).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&tourID); err != nil {
		return 0, err
	}
	return tourID, nil
}

// TourRatingStats computes the rating aggregates for one tour.
// With no reviews both values are zero.
func (r *ReviewsRepository) TourRatingStats(ctx context.Context, tourID int64) (domain.RatingStats, error) {
	const sql = `
		select count(*)::int                              as quantity,
		       coalesce(round(avg(rating), 1), 0)::float8 as average
		from reviews
		where tour_id = $1`

	var stats domain.RatingStats
	err := r.pool.QueryRow(ctx, sql, tourID).Scan(&stats.Quantity, &stats.Average)
	return stats, err
}

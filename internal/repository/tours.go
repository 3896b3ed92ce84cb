package repository

import (
	"context"
	"net/url"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/query"
)

// Earth radii used to express haversine distances in the unit the
// client asked for.
const (
	EarthRadiusKm = 6371.0
	EarthRadiusMi = 3959.0
)

var (
	tourColumns = []string{
		"id", "name", "slug", "duration", "max_group_size", "difficulty",
		"ratings_average", "ratings_quantity", "price", "price_discount",
		"summary", "description", "image_cover", "images", "start_dates",
		"start_address", "start_lat", "start_lng", "created_at", "updated_at",
	}
	tourFilterable = query.Columns(
		"name", "slug", "duration", "max_group_size", "difficulty",
		"ratings_average", "ratings_quantity", "price",
	)
	tourSortable = query.Columns(
		"name", "duration", "difficulty", "ratings_average",
		"ratings_quantity", "price", "created_at",
	)
	tourSelectable = query.Columns(tourColumns...)
)

// haversine computes the great-circle distance between each tour's
// start point and ($1, $2), in units of the earth radius passed as $3.
const haversineExpr = `($3::float8 * acos(least(1, greatest(-1,
	sin(radians($1::float8)) * sin(radians(start_lat)) +
	cos(radians($1::float8)) * cos(radians(start_lat)) *
	cos(radians(start_lng) - radians($2::float8))))))`

type ToursRepository struct {
	pool *pgxpool.Pool
}

func NewToursRepository(pool *pgxpool.Pool) *ToursRepository {
	return &ToursRepository{pool: pool}
}

func (r *ToursRepository) collect(ctx context.Context, sql string, args []interface{}) ([]domain.Tour, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.Tour])
}

func (r *ToursRepository) one(ctx context.Context, sql string, args []interface{}) (*domain.Tour, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.Tour])
}

// List returns tours shaped by the request's query string. Secret
// tours never appear in listings.
func (r *ToursRepository) List(ctx context.Context, values url.Values) ([]domain.Tour, error) {
	ds := builder.From("tours").Where(goqu.Ex{"secret_tour": false})

	sql, args, err := query.New(ds, values).
		Filter(tourFilterable).
		Sort(tourSortable).
		Fields(tourSelectable, tourColumns).
		Paginate().
		ToSQL()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, sql, args)
}

func (r *ToursRepository) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	sql, args, err := builder.From("tours").
		Select(toIdents(tourColumns)...).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

func (r *ToursRepository) Create(ctx context.Context, record goqu.Record) (*domain.Tour, error) {
	sql, args, err := builder.Insert("tours").
		Rows(record).
		Returning(toIdents(tourColumns)...).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

func (r *ToursRepository) Update(ctx context.Context, id int64, changes goqu.Record) (*domain.Tour, error) {
	changes["updated_at"] = goqu.L("now()")
	changes["version"] = goqu.L("version + 1")

	sql, args, err := builder.Update("tours").
		Set(changes).
		Where(goqu.Ex{"id": id}).
		Returning(toIdents(tourColumns)...).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

func (r *ToursRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder.Delete("tours").
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Stats aggregates tours by difficulty for tours rated 4.5 or better,
// sorted by average price.
func (r *ToursRepository) Stats(ctx context.Context) ([]domain.TourStats, error) {
	const sql = `
		select difficulty,
		       count(*)               as num_tours,
		       sum(ratings_quantity)  as num_ratings,
		       round(avg(ratings_average), 2)::float8 as avg_rating,
		       round(avg(price), 2)::float8           as avg_price,
		       min(price)::float8     as min_price,
		       max(price)::float8     as max_price
		from tours
		where ratings_average >= 4.5
		group by difficulty
		order by avg_price`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.TourStats])
}

// MonthlyPlan unnests start dates for a year and counts tour starts
// per month, busiest months first.
func (r *ToursRepository) MonthlyPlan(ctx context.Context, year int) ([]domain.MonthlyPlanEntry, error) {
	const sql = `
		select extract(month from start_date)::int as month,
		       count(*)::int                       as num_tour_starts,
		       array_agg(name order by name)       as tours
		from tours, unnest(start_dates) as start_date
		where extract(year from start_date) = $1
		group by month
		order by num_tour_starts desc, month`

	rows, err := r.pool.Query(ctx, sql, year)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.MonthlyPlanEntry])
}

// Within returns tours whose start point lies inside the given radius
// around (lat, lng). earthRadius picks the distance unit.
func (r *ToursRepository) Within(ctx context.Context, lat, lng, distance, earthRadius float64) ([]domain.Tour, error) {
	sql := `
		select ` + identList(tourColumns) + `
		from tours
		where start_lat is not null
		  and start_lng is not null
		  and secret_tour = false
		  and ` + haversineExpr + ` <= $4`

	rows, err := r.pool.Query(ctx, sql, lat, lng, earthRadius, distance)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.Tour])
}

// Distances lists every located tour with its distance from (lat, lng),
// nearest first.
func (r *ToursRepository) Distances(ctx context.Context, lat, lng, earthRadius float64) ([]domain.TourDistance, error) {
	sql := `
		select id, name, round(` + haversineExpr + `::numeric, 3)::float8 as distance
		from tours
		where start_lat is not null
		  and start_lng is not null
		  and secret_tour = false
		order by distance`

	rows, err := r.pool.Query(ctx, sql, lat, lng, earthRadius)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.TourDistance])
}

// UpdateRatings writes the derived rating aggregates for a tour.
func (r *ToursRepository) UpdateRatings(ctx context.Context, tourID int64, stats domain.RatingStats) error {
	sql, args, err := builder.Update("tours").
		Set(goqu.Record{
			"ratings_quantity": stats.Quantity,
			"ratings_average":  stats.Average,
			"updated_at":       goqu.L("now()"),
		}).
		Where(goqu.Ex{"id": tourID}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql, args...)
	return err
}

func identList(columns []string) string {
	return strings.Join(columns, ", ")
}

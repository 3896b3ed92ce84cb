package repository

import (
	"context"
	"net/url"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/query"
)

// Column sets for the users collection. The default projection leaves
// out everything credential-related; credential columns are only read
// through the dedicated lookups below.
var (
	userColumns = []string{
		"id", "name", "email", "photo", "role", "active", "created_at", "updated_at",
	}
	userFilterable = query.Columns("name", "email", "role")
	userSortable   = query.Columns("name", "email", "role", "created_at")
	userSelectable = query.Columns(userColumns...)
)

// userAuthColumns adds what the auth flows need on top of the default
// projection.
var userAuthColumns = append(append([]string{}, userColumns...),
	"password_hash", "password_changed_at", "password_reset_token", "password_reset_expires",
)

type UsersRepository struct {
	pool *pgxpool.Pool
}

func NewUsersRepository(pool *pgxpool.Pool) *UsersRepository {
	return &UsersRepository{pool: pool}
}

func (r *UsersRepository) collect(ctx context.Context, sql string, args []interface{}) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[domain.User])
}

func (r *UsersRepository) one(ctx context.Context, sql string, args []interface{}) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[domain.User])
}

// Create inserts a new account and returns it without credential
// columns.
func (r *UsersRepository) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	sql, args, err := builder.Insert("users").
		Rows(goqu.Record{
			"name":          name,
			"email":         email,
			"password_hash": passwordHash,
		}).
		Returning(toIdents(userColumns)...).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

// GetByID loads an account by primary key, including the credential
// columns needed for auth checks.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	sql, args, err := builder.From("users").
		Select(toIdents(userAuthColumns)...).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

// GetByEmail loads an active account by email for login.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	sql, args, err := builder.From("users").
		Select(toIdents(userAuthColumns)...).
		Where(goqu.Ex{"email": email, "active": true}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

// GetByResetToken finds the account holding an unexpired reset token.
func (r *UsersRepository) GetByResetToken(ctx context.Context, hashedToken string) (*domain.User, error) {
	sql, args, err := builder.From("users").
		Select(toIdents(userAuthColumns)...).
		Where(goqu.Ex{"password_reset_token": hashedToken}).
		Where(goqu.C("password_reset_expires").Gt(goqu.L("now()"))).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

// List returns active accounts shaped by the request's query string.
func (r *UsersRepository) List(ctx context.Context, values url.Values) ([]domain.User, error) {
	ds := builder.From("users").Where(goqu.Ex{"active": true})

	sql, args, err := query.New(ds, values).
		Filter(userFilterable).
		Sort(userSortable).
		Fields(userSelectable, userColumns).
		Paginate().
		ToSQL()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, sql, args)
}

// Update applies a partial update and returns the updated row.
// Every update bumps version and updated_at.
func (r *UsersRepository) Update(ctx context.Context, id int64, changes goqu.Record) (*domain.User, error) {
	changes["updated_at"] = goqu.L("now()")
	changes["version"] = goqu.L("version + 1")

	sql, args, err := builder.Update("users").
		Set(changes).
		Where(goqu.Ex{"id": id}).
		Returning(toIdents(userColumns)...).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.one(ctx, sql, args)
}

// UpdatePassword stores a new hash and stamps password_changed_at,
// which invalidates all previously issued tokens. Any pending reset
// token is cleared in the same statement.
func (r *UsersRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (*domain.User, error) {
	return r.Update(ctx, id, goqu.Record{
		"password_hash":          passwordHash,
		"password_changed_at":    goqu.L("now()"),
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	})
}

// SetResetToken stores the hashed reset token with its expiry.
func (r *UsersRepository) SetResetToken(ctx context.Context, id int64, hashedToken string, expires time.Time) error {
	sql, args, err := builder.Update("users").
		Set(goqu.Record{
			"password_reset_token":   hashedToken,
			"password_reset_expires": expires,
			"updated_at":             goqu.L("now()"),
		}).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql, args...)
	return err
}

// ClearResetToken discards a pending reset token, used when the email
// could not be sent so a dead token does not linger.
func (r *UsersRepository) ClearResetToken(ctx context.Context, id int64) error {
	sql, args, err := builder.Update("users").
		Set(goqu.Record{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}).
		Where(goqu.Ex{"id": id}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, sql, args...)
	return err
}

// Deactivate soft-deletes the account; it disappears from lists and
// login but the row survives.
func (r *UsersRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.Update(ctx, id, goqu.Record{"active": false})
	return err
}

// Delete removes the account permanently.
func (r *UsersRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder.Delete("users").
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

func toIdents(columns []string) []interface{} {
	out := make([]interface{}, len(columns))
	for i, c := range columns {
		out[i] = goqu.I(c)
	}
	return out
}

package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/errs"
)

// Store is the contract a service must satisfy for its resource to be
// served by the generic CRUD endpoints. M is the model, C and U the
// create and update payloads.
type Store[M any, C any, U any] interface {
	List(ctx context.Context, values url.Values) ([]M, error)
	Get(ctx context.Context, id int64) (*M, error)
	Create(ctx context.Context, req *C) (*M, error)
	Update(ctx context.Context, id int64, req *U) (*M, error)
	Delete(ctx context.Context, id int64) error
}

// ResourceHooks let a resource customize the generic endpoints where
// its routes deviate from plain CRUD.
type ResourceHooks[C any] struct {
	// BeforeCreate runs after binding and validation, before the
	// store call. Used to inject identity from the request context.
	BeforeCreate func(c echo.Context, req *C) error

	// ScopeList can fold path parameters into the list query, which
	// is how nested routes constrain their collection.
	ScopeList func(c echo.Context, values url.Values)
}

// Resource produces the five standard CRUD endpoints for one
// collection, all sharing the same envelope shape, id parsing, query
// conventions and error funnel. Handlers that need more than CRUD are
// written next to it, not wedged into it.
type Resource[M any, C any, PC RequestPtr[C], U any, PU RequestPtr[U]] struct {
	h      Handler
	name   string
	plural string
	store  Store[M, C, U]
	hooks  ResourceHooks[C]
}

// NewResource builds a Resource. name keys single documents in the
// envelope ("tour"), plural keys collections ("tours").
func NewResource[M any, C any, PC RequestPtr[C], U any, PU RequestPtr[U]](
	h Handler,
	name, plural string,
	store Store[M, C, U],
	hooks ResourceHooks[C],
) *Resource[M, C, PC, U, PU] {
	return &Resource[M, C, PC, U, PU]{
		h:      h,
		name:   name,
		plural: plural,
		store:  store,
		hooks:  hooks,
	}
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errs.NewBadRequestError("Invalid "+name+" parameter", nil, nil)
	}
	return id, nil
}

// List serves GET /. An empty collection is a success with zero
// results, not an error.
func (r *Resource[M, C, PC, U, PU]) List() echo.HandlerFunc {
	return Handle(r.h, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		values := c.QueryParams()
		if r.hooks.ScopeList != nil {
			r.hooks.ScopeList(c, values)
		}

		items, err := r.store.List(c.Request().Context(), values)
		if err != nil {
			return nil, err
		}
		return ListOK(r.plural, len(items), items), nil
	}, http.StatusOK)
}

// Get serves GET /:id.
func (r *Resource[M, C, PC, U, PU]) Get() echo.HandlerFunc {
	return Handle(r.h, func(c echo.Context, _ *EmptyRequest) (*Envelope, error) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil, err
		}

		item, err := r.store.Get(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		return OK(r.name, item), nil
	}, http.StatusOK)
}

// Create serves POST /.
func (r *Resource[M, C, PC, U, PU]) Create() echo.HandlerFunc {
	return Handle(r.h, func(c echo.Context, req PC) (*Envelope, error) {
		if r.hooks.BeforeCreate != nil {
			if err := r.hooks.BeforeCreate(c, (*C)(req)); err != nil {
				return nil, err
			}
		}

		item, err := r.store.Create(c.Request().Context(), (*C)(req))
		if err != nil {
			return nil, err
		}
		return OK(r.name, item), nil
	}, http.StatusCreated)
}

// Update serves PATCH /:id with a partial document.
func (r *Resource[M, C, PC, U, PU]) Update() echo.HandlerFunc {
	return Handle(r.h, func(c echo.Context, req PU) (*Envelope, error) {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil, err
		}

		item, err := r.store.Update(c.Request().Context(), id, (*U)(req))
		if err != nil {
			return nil, err
		}
		return OK(r.name, item), nil
	}, http.StatusOK)
}

// Delete serves DELETE /:id, responding 204 on success.
func (r *Resource[M, C, PC, U, PU]) Delete() echo.HandlerFunc {
	return HandleNoContent(r.h, func(c echo.Context, _ *EmptyRequest) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		return r.store.Delete(c.Request().Context(), id)
	}, http.StatusNoContent)
}

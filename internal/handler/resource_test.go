package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/validation"
)

type widget struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type createWidgetRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *createWidgetRequest) Validate() error { return validation.Struct(r) }

type updateWidgetRequest struct {
	Name *string `json:"name"`
}

func (r *updateWidgetRequest) Validate() error { return validation.Struct(r) }

// widgetStore records calls so tests can assert what the generic
// endpoints pass through.
type widgetStore struct {
	widgets    []widget
	lastValues url.Values
	lastID     int64
	deleted    []int64
}

func (s *widgetStore) List(ctx context.Context, values url.Values) ([]widget, error) {
	s.lastValues = values
	return s.widgets, nil
}

func (s *widgetStore) Get(ctx context.Context, id int64) (*widget, error) {
	s.lastID = id
	for i := range s.widgets {
		if s.widgets[i].ID == id {
			return &s.widgets[i], nil
		}
	}
	return nil, errs.NewNotFoundError("No widget found with that ID")
}

func (s *widgetStore) Create(ctx context.Context, req *createWidgetRequest) (*widget, error) {
	w := widget{ID: int64(len(s.widgets) + 1), Name: req.Name}
	s.widgets = append(s.widgets, w)
	return &w, nil
}

func (s *widgetStore) Update(ctx context.Context, id int64, req *updateWidgetRequest) (*widget, error) {
	s.lastID = id
	name := "unchanged"
	if req.Name != nil {
		name = *req.Name
	}
	return &widget{ID: id, Name: name}, nil
}

func (s *widgetStore) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newWidgetResource(store *widgetStore, hooks ResourceHooks[createWidgetRequest]) *Resource[widget, createWidgetRequest, *createWidgetRequest, updateWidgetRequest, *updateWidgetRequest] {
	return NewResource[widget, createWidgetRequest, *createWidgetRequest, updateWidgetRequest, *updateWidgetRequest](
		Handler{}, "widget", "widgets", store, hooks,
	)
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(c echo.Context)) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	return rec, h(c)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestResourceList(t *testing.T) {
	store := &widgetStore{widgets: []widget{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{})

	rec, err := doRequest(t, r.List(), http.MethodGet, "/widgets?name=a", "", nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(2), body["results"])

	data := body["data"].(map[string]interface{})
	assert.Len(t, data["widgets"], 2)
	assert.Equal(t, "a", store.lastValues.Get("name"))
}

func TestResourceListScopeHook(t *testing.T) {
	store := &widgetStore{}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{
		ScopeList: func(c echo.Context, values url.Values) {
			values.Set("owner_id", "7")
		},
	})

	_, err := doRequest(t, r.List(), http.MethodGet, "/widgets", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "7", store.lastValues.Get("owner_id"))
}

func TestResourceGet(t *testing.T) {
	store := &widgetStore{widgets: []widget{{ID: 5, Name: "five"}}}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{})

	rec, err := doRequest(t, r.Get(), http.MethodGet, "/widgets/5", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("5")
	})
	require.NoError(t, err)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	doc := data["widget"].(map[string]interface{})
	assert.Equal(t, "five", doc["name"])
	assert.Nil(t, body["results"])
}

func TestResourceGetInvalidID(t *testing.T) {
	r := newWidgetResource(&widgetStore{}, ResourceHooks[createWidgetRequest]{})

	_, err := doRequest(t, r.Get(), http.MethodGet, "/widgets/abc", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("abc")
	})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestResourceGetMissing(t *testing.T) {
	r := newWidgetResource(&widgetStore{}, ResourceHooks[createWidgetRequest]{})

	_, err := doRequest(t, r.Get(), http.MethodGet, "/widgets/9", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("9")
	})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestResourceCreate(t *testing.T) {
	store := &widgetStore{}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{})

	rec, err := doRequest(t, r.Create(), http.MethodPost, "/widgets", `{"name":"new"}`, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	doc := data["widget"].(map[string]interface{})
	assert.Equal(t, "new", doc["name"])
}

func TestResourceCreateValidates(t *testing.T) {
	store := &widgetStore{}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{})

	_, err := doRequest(t, r.Create(), http.MethodPost, "/widgets", `{}`, nil)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Empty(t, store.widgets)
}

func TestResourceCreateBeforeHook(t *testing.T) {
	store := &widgetStore{}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{
		BeforeCreate: func(c echo.Context, req *createWidgetRequest) error {
			req.Name = "hooked"
			return nil
		},
	})

	rec, err := doRequest(t, r.Create(), http.MethodPost, "/widgets", `{"name":"original"}`, nil)
	require.NoError(t, err)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	doc := data["widget"].(map[string]interface{})
	assert.Equal(t, "hooked", doc["name"])
}

func TestResourceUpdate(t *testing.T) {
	store := &widgetStore{}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{})

	rec, err := doRequest(t, r.Update(), http.MethodPatch, "/widgets/3", `{"name":"renamed"}`, func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("3")
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), store.lastID)

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	doc := data["widget"].(map[string]interface{})
	assert.Equal(t, "renamed", doc["name"])
}

func TestResourceDelete(t *testing.T) {
	store := &widgetStore{}
	r := newWidgetResource(store, ResourceHooks[createWidgetRequest]{})

	rec, err := doRequest(t, r.Delete(), http.MethodDelete, "/widgets/4", "", func(c echo.Context) {
		c.SetParamNames("id")
		c.SetParamValues("4")
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []int64{4}, store.deleted)
}

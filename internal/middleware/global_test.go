package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailbook-app/trailbook/internal/config"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/server"
)

func newTestGlobalMiddlewares(env string) *GlobalMiddlewares {
	log := zerolog.Nop()
	return NewGlobalMiddlewares(&server.Server{
		Config: &config.Config{
			Observability: &config.ObservabilityConfig{Environment: env},
		},
		Logger: &log,
	})
}

func renderError(t *testing.T, global *GlobalMiddlewares, err error) (int, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	global.GlobalErrorHandler(err, c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestGlobalErrorHandlerClientFault(t *testing.T) {
	global := newTestGlobalMiddlewares("production")

	status, body := renderError(t, global, errs.NewNotFoundError("No tour found with that ID"))

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "No tour found with that ID", body["message"])
	assert.NotContains(t, body, "stack")
}

func TestGlobalErrorHandlerServerFault(t *testing.T) {
	global := newTestGlobalMiddlewares("production")

	status, body := renderError(t, global, errors.New("pool exhausted"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, body["message"], "pool exhausted")
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "stack")
}

func TestGlobalErrorHandlerLeaksDetailOutsideProduction(t *testing.T) {
	global := newTestGlobalMiddlewares("local")

	_, body := renderError(t, global, errors.New("pool exhausted"))

	assert.Equal(t, "pool exhausted", body["error"])
	assert.Contains(t, body, "stack")
}

func TestGlobalErrorHandlerLogLevels(t *testing.T) {
	global := newTestGlobalMiddlewares("production")

	renderWithLogger := func(t *testing.T, err error) string {
		t.Helper()

		var buf bytes.Buffer
		log := zerolog.New(&buf)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(LoggerKey, &log)

		global.GlobalErrorHandler(err, c)
		return buf.String()
	}

	t.Run("client fault logs at warn", func(t *testing.T) {
		out := renderWithLogger(t, errs.NewNotFoundError("No tour found with that ID"))
		assert.Contains(t, out, `"level":"warn"`)
	})

	t.Run("server fault logs at error", func(t *testing.T) {
		out := renderWithLogger(t, errors.New("pool exhausted"))
		assert.Contains(t, out, `"level":"error"`)
	})
}

func TestGlobalErrorHandlerMapsUnknownRoutes(t *testing.T) {
	global := newTestGlobalMiddlewares("production")

	status, body := renderError(t, global, echo.NewHTTPError(http.StatusNotFound, "Not Found"))

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestGlobalErrorHandlerMapsMissingRows(t *testing.T) {
	global := newTestGlobalMiddlewares("production")

	status, body := renderError(t, global, pgx.ErrNoRows)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "fail", body["status"])
}

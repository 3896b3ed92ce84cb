package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/sqlerr"
)

// GlobalMiddlewares groups global middleware and the global error
// handler, with access to shared dependencies through the app
// container.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS returns Echo's CORS middleware configured from server config.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger emits one structured log line per request, with
// severity chosen from the response status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			statusCode := v.Status

			// When a handler returns an error, the final status is
			// written later by the global error handler, so derive it
			// from the error here instead of logging the interim one.
			// See https://github.com/labstack/echo/issues/2310
			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}
			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns handler panics into 500 responses instead of killing
// the process.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return echoMiddleware.Recover()
}

// Secure adds standard security-related headers.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return echoMiddleware.Secure()
}

// errorEnvelope is the JSON body written for every failed request.
// Status is "fail" for client faults and "error" for server faults.
// Detail and Stack are only populated outside production.
type errorEnvelope struct {
	Status  string            `json:"status"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Errors  []errs.FieldError `json:"errors,omitempty"`
	Detail  string            `json:"error,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

// GlobalErrorHandler is the final error funnel for the entire HTTP
// server. Every error any layer returns ends up here and is rendered
// into the response envelope.
//
// Unknown errors are first normalized: echo's route 404 is converted
// to the envelope's not-found shape, and anything else goes through
// the database error mapper, which is where driver errors (unique
// violations, missing rows) become client-facing statuses.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	// Keep the original error for logging; the client may get a
	// sanitized version.
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if echoErr.Code == http.StatusNotFound {
				err = errs.NewNotFoundError("Route not found")
			}
		} else {
			err = sqlerr.HandleError(err)
		}
	}

	var echoErr *echo.HTTPError
	var status int
	var code string
	var message string
	var fieldErrors []errs.FieldError

	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Status
		code = httpErr.Code
		message = httpErr.Message
		fieldErrors = httpErr.Errors

	case errors.As(err, &echoErr):
		status = echoErr.Code
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(status))
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(echoErr.Code)
		}

	default:
		status = http.StatusInternalServerError
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError))
		message = http.StatusText(http.StatusInternalServerError)
	}

	// Client faults are expected traffic, not incidents: they log at
	// warn without a stack. Server faults log at error with one.
	logger := *GetLogger(c)
	logEvent := logger.Warn()
	if status >= 500 {
		logEvent = logger.Error().Stack()
	}
	logEvent.
		Err(originalErr).
		Int("status", status).
		Str("error_code", code).
		Msg(message)

	envelope := errorEnvelope{
		Code:    code,
		Message: message,
		Errors:  fieldErrors,
	}
	if status >= 400 && status < 500 {
		envelope.Status = "fail"
	} else {
		envelope.Status = "error"
	}

	// Outside production, leak the details: the underlying error text
	// and its stack make local debugging bearable.
	if !global.server.Config.Observability.IsProduction() {
		envelope.Detail = originalErr.Error()
		envelope.Stack = fmt.Sprintf("%+v", originalErr)
	}

	if !c.Response().Committed {
		_ = c.JSON(status, envelope)
	}
}

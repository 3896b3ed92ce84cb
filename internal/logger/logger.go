// Package logger configures the application's logging,
// monitoring, and observability.
//
// It uses *ZeroLog* for logging and integrates with
// *New Relic* to instrument the codebase, forwarding logs,
// metrics, and traces for debugging
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/trailbook-app/trailbook/internal/config"
)

// LoggerService owns the root zerolog logger and, when a license key
// is configured, the New Relic application used for APM. The New Relic
// half is optional; callers must treat GetApplication() == nil as
// "telemetry disabled".
type LoggerService struct {
	logger zerolog.Logger
	app    *newrelic.Application
}

// New builds the root logger from the observability config and starts
// the New Relic agent when a license key is present. An empty license
// key is not an error; the service simply runs without APM.
func New(cfg *config.Config) (*LoggerService, error) {
	obs := cfg.Observability

	level, err := zerolog.ParseLevel(obs.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	var app *newrelic.Application
	if obs.NewRelic.LicenseKey != "" {
		app, err = newrelic.NewApplication(
			newrelic.ConfigAppName(obs.ServiceName),
			newrelic.ConfigLicense(obs.NewRelic.LicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(obs.NewRelic.AppLogForwardingEnabled),
			newrelic.ConfigDistributedTracerEnabled(obs.NewRelic.DistributedTracingEnabled),
			func(c *newrelic.Config) {
				if obs.NewRelic.DebugLogging {
					c.Logger = newrelic.NewDebugLogger(os.Stdout)
				}
				c.Labels = map[string]string{"env": obs.Environment}
			},
		)
		if err != nil {
			return nil, fmt.Errorf("initializing new relic application: %w", err)
		}
	}

	var out io.Writer = os.Stdout
	if obs.Logging.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	// When the agent is running and forwarding is on, wrap the output
	// so log lines are decorated with linking metadata and shipped.
	if app != nil && obs.NewRelic.AppLogForwardingEnabled {
		w := zerologWriter.New(out, app)
		out = &w
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", obs.ServiceName).
		Str("env", obs.Environment).
		Logger()

	return &LoggerService{logger: logger, app: app}, nil
}

// GetLogger returns the root application logger.
func (s *LoggerService) GetLogger() *zerolog.Logger {
	return &s.logger
}

// GetApplication returns the New Relic application, or nil when APM
// is not configured.
func (s *LoggerService) GetApplication() *newrelic.Application {
	if s == nil {
		return nil
	}
	return s.app
}

// Shutdown flushes buffered telemetry. Safe to call when APM is off.
func (s *LoggerService) Shutdown(timeout time.Duration) {
	if s != nil && s.app != nil {
		s.app.Shutdown(timeout)
	}
}

// NewPgxLogger returns a logger dedicated to SQL query output. It is
// kept separate from the root logger so query logging can be noisier
// than the rest of the app without changing the global level.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Str("component", "pgx").
		Logger()
}

// GetPgxTraceLogLevel maps a zerolog level onto the pgx tracelog level
// scale (none=0 .. trace=6). The caller casts the result to
// tracelog.LogLevel; returning an int here keeps this package free of
// a pgx import.
func GetPgxTraceLogLevel(level zerolog.Level) int {
	switch level {
	case zerolog.TraceLevel:
		return 6 // tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return 5 // tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return 4 // tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return 3 // tracelog.LogLevelWarn
	case zerolog.ErrorLevel:
		return 2 // tracelog.LogLevelError
	default:
		return 0 // tracelog.LogLevelNone
	}
}

// WithTraceContext returns a child logger carrying the transaction's
// trace and span ids so log lines can be joined with traces.
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}
	md := txn.GetTraceMetadata()
	ctx := logger.With()
	if md.TraceID != "" {
		ctx = ctx.Str("trace.id", md.TraceID)
	}
	if md.SpanID != "" {
		ctx = ctx.Str("span.id", md.SpanID)
	}
	return ctx.Logger()
}

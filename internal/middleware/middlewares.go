package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/trailbook-app/trailbook/internal/server"
)

// Middlewares groups all middleware components used by the HTTP
// server, so routing code wires them from one place.
type Middlewares struct {
	// Global holds common middleware used across the whole API:
	// CORS, request logging, recovery, secure headers, and the global
	// error handler.
	Global *GlobalMiddlewares

	// Auth authenticates requests and enforces role requirements.
	Auth *AuthMiddleware

	// ContextEnhancer enriches each request with a request-scoped
	// logger (request_id, method, path, ip, user and trace metadata).
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and helpers to attach
	// custom attributes and notice errors on transactions.
	Tracing *TracingMiddleware

	// RateLimit enforces the per-client request budget under /api.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. users is the
// lookup Protect uses to resolve token subjects into accounts.
func NewMiddlewares(s *server.Server, users UserLoader) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, users),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/handler"
)

// registerSystemRoutes registers endpoints that are not business
// logic, kept outside the versioned API group so monitors skip the
// rate limiter.
func registerSystemRoutes(e *echo.Echo, h *handler.Handlers) {
	e.GET("/health", h.Health.CheckHealth)
}

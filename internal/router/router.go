// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/handler"
	"github.com/trailbook-app/trailbook/internal/middleware"
)

// New builds the Echo instance with all middleware and routes
// registered, ready to hand to the server.
func New(h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	e.Use(middleware.RequestID())
	e.Use(mw.Tracing.NewRelicMiddleware())
	e.Use(mw.ContextEnhancer.EnhanceContext())
	e.Use(mw.Global.RequestLogger())
	e.Use(mw.Global.Recover())
	e.Use(mw.Global.Secure())
	e.Use(mw.Global.CORS())
	e.Use(mw.Tracing.EnhanceTracing())

	registerSystemRoutes(e, h)

	api := e.Group("/api", mw.RateLimit.Limit())
	v1 := api.Group("/v1")

	registerUserRoutes(v1, h, mw)
	registerTourRoutes(v1, h, mw)
	registerReviewRoutes(v1, h, mw)

	return e
}

func registerUserRoutes(v1 *echo.Group, h *handler.Handlers, mw *middleware.Middlewares) {
	users := v1.Group("/users")

	users.POST("/signup", h.Auth.Signup())
	users.POST("/login", h.Auth.Login())
	users.GET("/logout", h.Auth.Logout())
	users.POST("/forgot-password", h.Auth.ForgotPassword())
	users.PATCH("/reset-password/:token", h.Auth.ResetPassword())

	// Everything below requires authentication.
	users.Use(mw.Auth.Protect())

	users.PATCH("/update-password", h.Auth.UpdatePassword())
	users.GET("/me", h.Users.Me())
	users.PATCH("/update-me", h.Users.UpdateMe())
	users.DELETE("/delete-me", h.Users.DeleteMe())

	admin := mw.Auth.RequireRoles(domain.RoleAdmin)
	users.GET("", h.Users.List(), admin)
	users.POST("", h.Users.Create(), admin)
	users.GET("/:id", h.Users.Get(), admin)
	users.PATCH("/:id", h.Users.Update(), admin)
	users.DELETE("/:id", h.Users.Delete(), admin)
}

func registerTourRoutes(v1 *echo.Group, h *handler.Handlers, mw *middleware.Middlewares) {
	tours := v1.Group("/tours")

	staff := mw.Auth.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide)
	guides := mw.Auth.RequireRoles(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide)
	protect := mw.Auth.Protect()

	tours.GET("/top-5-cheap", h.Tours.List(), handler.AliasTopTours)
	tours.GET("/stats", h.Tours.Stats())
	tours.GET("/monthly-plan/:year", h.Tours.MonthlyPlan(), protect, guides)
	tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.Tours.Within())
	tours.GET("/distances/:latlng/unit/:unit", h.Tours.Distances())

	tours.GET("", h.Tours.List())
	tours.POST("", h.Tours.Create(), protect, staff)
	tours.GET("/:id", h.Tours.Get())
	tours.PATCH("/:id", h.Tours.Update(), protect, staff)
	tours.DELETE("/:id", h.Tours.Delete(), protect, staff)

	// Nested reviews for one tour.
	nested := tours.Group("/:tourId/reviews", protect)
	nested.GET("", h.Reviews.List())
	nested.POST("", h.Reviews.Create(), mw.Auth.RequireRoles(domain.RoleUser))
}

func registerReviewRoutes(v1 *echo.Group, h *handler.Handlers, mw *middleware.Middlewares) {
	reviews := v1.Group("/reviews", mw.Auth.Protect())

	reviews.GET("", h.Reviews.List())
	reviews.POST("", h.Reviews.Create(), mw.Auth.RequireRoles(domain.RoleUser))
	reviews.GET("/:id", h.Reviews.Get())

	moderate := mw.Auth.RequireRoles(domain.RoleUser, domain.RoleAdmin)
	reviews.PATCH("/:id", h.Reviews.Update(), moderate)
	reviews.DELETE("/:id", h.Reviews.Delete(), moderate)
}

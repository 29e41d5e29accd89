// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematick/internal/handler"
	"github.com/iliyamo/cinematick/internal/middleware"
	"github.com/iliyamo/cinematick/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check, used by load balancers to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; the /v1/me and
// /v1/users endpoints require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.GET("/me", a.Me)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", a.ListUsers)
}

// RegisterPublic registers the unauthenticated browse endpoints:
// event listing and detail, the per-event seat map and the category
// list, plus the quote endpoint so guests can price a selection
// before registering.  The optional cache middleware (nil when Redis
// is absent) shields these read-heavy routes.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, b *handler.BookingHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/events", ev.List)
	g.GET("/events/:name", ev.Get)
	g.GET("/events/:name/seats", b.BookedSeats)
	g.GET("/categories", ev.Categories)

	// Quotes are cheap pure computations; no cache needed.
	e.POST("/v1/quote", b.Quote)
}

// RegisterBooking registers the booking transaction endpoints.  All
// of them require a valid access token; both roles may book and
// cancel (admins may cancel anyone's booking, which the coordinator
// enforces).
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	g.POST("/book", b.Book)
	g.POST("/cancel", b.Cancel)
	g.GET("/my-bookings", b.MyBookings)
}

// RegisterAdminEvents registers event management, restricted to the
// admin role.
func RegisterAdminEvents(e *echo.Echo, ev *handler.EventHandler, jwtSecret string) {
	g := e.Group("/v1/events")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.POST("", ev.Create)
	g.PATCH("/:name", ev.Patch)
}

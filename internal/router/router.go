// Package router registers the HTTP routes of the API, grouped by
// audience: public browse, auth, driver and admin.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/openpark/parking-reservation/internal/handler"
	"github.com/openpark/parking-reservation/internal/middleware"
	"github.com/openpark/parking-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The /healthz endpoint is used by load balancers and monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Routes that do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a bearer
	// token in the header, so it stays outside the JWT middleware.
	g.POST("/logout", a.Logout)

	// Protected identity endpoint.  Both roles may read their own
	// identity.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleDriver, model.RoleAdmin))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  Guests can
// search lots and inspect availability before creating an account.  The
// optional extra middleware (rate limiting, response caching) is applied
// to this group only.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/lots", p.SearchLots)
	g.GET("/lots/:id", p.GetLot)
}

// RegisterDriver registers driver-scoped endpoints under /v1.  All routes
// require a valid JWT with the DRIVER role.  Drivers can book a spot,
// release their reservation and view their dashboard.
func RegisterDriver(e *echo.Echo, h *handler.DriverHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleDriver),
	)
	g.POST("/lots/:id/book", h.Book)
	g.POST("/reservations/:id/release", h.Release)
	g.GET("/dashboard", h.Dashboard)
}

// RegisterAdmin registers lot management endpoints under /v1/admin.  All
// routes require a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/lots", h.CreateLot)
	g.PUT("/lots/:id", h.UpdateLot)
	g.DELETE("/lots/:id", h.DeleteLot)
	g.GET("/lots/:id/spots", h.LotSpots)
	g.GET("/stats", h.Stats)
}

package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/store-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/store-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The /healthz endpoint can be used by load balancers or monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session (register, login,
	// refresh).  Each of these handlers generates or exchanges tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new access
	// token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a JSON body containing a `refresh_token` or a Bearer
	// header and invalidates the matching session(s).  It does not require
	// the JWT middleware.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  The RequireRole middleware
	// rejects requests with missing or unknown roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "USER"))
	auth.GET("/me", a.Me)

	// Alias kept at the top level so clients can call either
	// /v1/auth/logout or /v1/logout with a refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The PublicHandler returns sanitized store and review data
// for guests; no JWT or role middleware applies here.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Expose the store directory.  The sort query parameter selects name,
	// rating or distance ordering; distance requires lat and lng.
	e.GET("/v1/stores", p.ListStores)
	// Store details by store id
	e.GET("/v1/stores/:id", p.GetStore)
	// Publicly view the reviews of a store
	e.GET("/v1/stores/:id/reviews", p.ListStoreReviews)
}

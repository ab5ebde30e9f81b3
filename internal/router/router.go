package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/Grizz0o0/DA-KHMT-sub000/internal/handler"    // import the handlers that implement business logic
	"github.com/Grizz0o0/DA-KHMT-sub000/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check plus the public flight and
// airport catalogue.  The optional cache middleware (Redis-backed) is
// applied to the search endpoints only, since those are the hot read
// paths.
func RegisterRoutes(e *echo.Echo, f *handler.FlightHandler, fleet *handler.FleetHandler, cache echo.MiddlewareFunc) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)

	// Public catalogue under /v1.  Browsing the schedule requires no
	// session; only booking does.
	pub := e.Group("/v1")
	if cache != nil {
		// Cache only the searches.  Single-document reads are cheap and
		// caching them would delay admin edits becoming visible.
		pub.GET("/flights", f.Search, cache)
		pub.GET("/airports", fleet.SearchAirports, cache)
	} else {
		pub.GET("/flights", f.Search)
		pub.GET("/airports", fleet.SearchAirports)
	}
	pub.GET("/flights/:id", f.Get)
	pub.GET("/airports/:id", fleet.GetAirport)
	pub.GET("/airlines", fleet.ListAirlines)
	pub.GET("/airlines/:id", fleet.GetAirline)
	pub.GET("/aircraft", fleet.ListAircraft)
	pub.GET("/aircraft/:id", fleet.GetAircraft)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Group for operations that do not require an existing session
	// (register, login, refresh).  Each of these handlers is responsible
	// for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication.  The handler accepts a
	// JSON body containing a `refresh_token` and will invalidate that
	// token, or revokes every session when called with a bearer token and
	// no body.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  All handlers registered
	// on this group execute the JWTAuth middleware before being invoked.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Accept both roles here; role-specific groups narrow further.
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
}

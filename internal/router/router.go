package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"identity-service/internal/handler"    // handlers implementing endpoint logic
	"identity-service/internal/middleware" // bearer-token extraction middleware
	"identity-service/internal/token"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Register, login and refresh
// authenticate by themselves (body credentials or refresh cookie) and take
// no middleware; the profile endpoints require a valid bearer access token,
// enforced by middleware.RequireUser before any handler runs.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *token.Service) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)
	e.POST("/refresh", a.Refresh)

	requireUser := middleware.RequireUser(tokens)
	e.GET("/user", a.Profile, requireUser)
	e.PATCH("/user", a.UpdateProfile, requireUser)
}

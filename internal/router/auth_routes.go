package router

import (
	"github.com/labstack/echo/v4"

	"github.com/uicode-market/uicode/internal/handler"    // auth handlers
	"github.com/uicode-market/uicode/internal/middleware" // JWT middleware
)

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while the identity endpoint lives under /v1 behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: registration,
	// credential exchange and refresh rotation.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	// The credential exchange is form-encoded (OAuth2 password-flow
	// shape): `username` carries the email address.
	g.POST("/token", a.Token)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body and does not require a
	// JWT; with a bearer token and no body it revokes every session, so
	// the authenticated variant is also registered below.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/users/me", a.Me)
	auth.POST("/logout", a.Logout)
}

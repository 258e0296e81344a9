package router

import (
	"github.com/labstack/echo/v4"

	"github.com/uicode-market/uicode/internal/handler"    // moderation handlers
	"github.com/uicode-market/uicode/internal/middleware" // JWT + role middlewares
	"github.com/uicode-market/uicode/internal/model"
)

// RegisterAdmin registers the moderation surface under /v1/admin.
// All routes require a valid JWT and the ADMIN role; the role gate is
// the only authorization check, handlers assume it already passed.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Moderation queue ----
	g.GET("/pending", a.Pending)
	g.PATCH("/components/:id/status", a.UpdateStatus)
	g.DELETE("/components/:id", a.Delete)

	// ---- User audit ----
	g.GET("/users", a.ListUsers)
	g.GET("/users/:id/components", a.UserComponents)
	g.DELETE("/users/:id", a.DeleteUser)
}

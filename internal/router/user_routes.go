package router

import (
	"github.com/labstack/echo/v4"

	"github.com/uicode-market/uicode/internal/handler"
	"github.com/uicode-market/uicode/internal/middleware"
	"github.com/uicode-market/uicode/internal/model"
)

// RegisterUser registers the endpoints any authenticated account can
// call.  Both roles are admitted: submitting and rating are not
// admin-gated, and the delete handler itself decides between the
// owner's self-service path and the admin capability.
func RegisterUser(e *echo.Echo, co *handler.ComponentHandler, ra *handler.RatingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)

	// Submissions land in PENDING, owned by the caller.
	g.POST("/components", co.Create)
	// The author dashboard: own components in every state.
	g.GET("/users/me/components", co.Mine)
	// Owner self-service delete (admins may delete anyone's).
	g.DELETE("/components/:id", co.Delete)
	// One vote per user per component, upserted.
	g.POST("/components/:id/rate", ra.Rate)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/uicode-market/uicode/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints.  These
// routes apply no JWT or role middleware and only ever expose ACCEPTED
// components (the repository enforces that; the preview endpoint serves
// any status because it backs the author and admin screens too, but the
// document it returns is always the sandboxed frame).  The extra
// middleware parameter carries the redis response cache and the rate
// limiter, which wrap only this high-traffic read surface.
func RegisterPublic(e *echo.Echo, p *handler.ComponentHandler, extra ...echo.MiddlewareFunc) {
	// Browse/search the public gallery.
	e.GET("/v1/components", p.ListPublic, extra...)
	// Component detail with owner and live rating aggregate.
	e.GET("/v1/components/:id", p.Get)
	// Sandboxed preview document for embedding.
	e.GET("/v1/components/:id/preview", p.Preview)
}

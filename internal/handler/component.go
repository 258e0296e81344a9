package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/uicode-market/uicode/internal/catalog"
	"github.com/uicode-market/uicode/internal/render"
	"github.com/uicode-market/uicode/internal/repository"
)

// ComponentHandler bundles the repositories behind the component CRUD
// surface plus the redis client used to purge the public-listing cache
// after a confirmed delete.
type ComponentHandler struct {
	Components *repository.ComponentRepo
	RDB        *redis.Client
	CachePrefix string
}

func NewComponentHandler(components *repository.ComponentRepo, rdb *redis.Client, cachePrefix string) *ComponentHandler {
	if components == nil {
		panic("nil repository passed to NewComponentHandler")
	}
	return &ComponentHandler{Components: components, RDB: rdb, CachePrefix: cachePrefix}
}

type createComponentReq struct {
	Category string `json:"category"`
	HTMLCode string `json:"html_code"`
	CSSCode  string `json:"css_code"`
}

// Create handles POST /v1/components. Requires an authenticated caller;
// the submission always lands in PENDING owned by that caller.
func (h *ComponentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createComponentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Category = strings.TrimSpace(req.Category)
	if !catalog.Valid(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	if strings.TrimSpace(req.HTMLCode) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "html_code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Components.Create(ctx, uid, req.Category, req.HTMLCode, req.CSSCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create component failed"})
	}
	row, err := h.Components.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load component failed"})
	}
	return c.JSON(http.StatusCreated, row)
}

// ListPublic handles GET /v1/components. Anonymous and USER callers see
// ACCEPTED components only; that filter is applied in the repository,
// never here, so nothing unreviewed can leak through this surface.
func (h *ComponentHandler) ListPublic(c echo.Context) error {
	q := repository.ComponentSearchQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Limit = n
		}
	}
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.Offset = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, total, err := h.Components.SearchPublic(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load components"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows, "total": total})
}

// Get handles GET /v1/components/:id and returns one component with its
// owner and live rating aggregate, any status. The detail page is also
// the author-preview and admin-review surface, which is why status is
// not filtered here.
func (h *ComponentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Components.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load component"})
	}
	return c.JSON(http.StatusOK, row)
}

// Preview handles GET /v1/components/:id/preview. It serves the
// sandboxed document for the snippet regardless of status, so the same
// endpoint backs the public gallery card, the author's own preview and
// the admin review screen.
func (h *ComponentHandler) Preview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Components.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load component"})
	}
	return c.HTML(http.StatusOK, render.Frame(row.HTMLCode, row.CSSCode))
}

// Mine handles GET /v1/users/me/components: the caller's own
// submissions in every state, for the author dashboard.
func (h *ComponentHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Components.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load components"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// Delete handles DELETE /v1/components/:id. The owner may remove their
// own submission and an admin may remove anyone's; other authenticated
// callers get 403. Local/cached state is only invalidated after the row
// is confirmed gone.
func (h *ComponentHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ownerID, err := h.Components.OwnerOf(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load component"})
	}
	if ownerID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Components.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.purgeListingCache(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "component deleted"})
}

func (h *ComponentHandler) purgeListingCache(c echo.Context) {
	if h.RDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := purge(ctx, h.RDB, h.CachePrefix); err != nil {
		c.Logger().Warnf("cache purge failed: %v", err)
	}
}

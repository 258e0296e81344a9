package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/uicode-market/uicode/internal/model"
	"github.com/uicode-market/uicode/internal/queue"
	"github.com/uicode-market/uicode/internal/repository"
	queue_publisher "github.com/uicode-market/uicode/internal/service"
)

// AdminHandler bundles repositories for the moderation surface. Every
// route it serves sits behind RequireRole("ADMIN"), so the handlers
// never re-check the role themselves.
type AdminHandler struct {
	Users       *repository.UserRepo
	Components  *repository.ComponentRepo
	RDB         *redis.Client
	CachePrefix string
}

func NewAdminHandler(users *repository.UserRepo, components *repository.ComponentRepo, rdb *redis.Client, cachePrefix string) *AdminHandler {
	if users == nil || components == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Components: components, RDB: rdb, CachePrefix: cachePrefix}
}

// Pending handles GET /v1/admin/pending: the review queue, oldest first.
func (h *AdminHandler) Pending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Components.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load queue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// UpdateStatus handles PATCH /v1/admin/components/:id/status?status=.
// The decision must be ACCEPTED or REJECTED; the repository enforces
// the terminal state machine and makes a repeated identical decision a
// no-op success. On a confirmed transition the listing cache is purged
// and a component.reviewed event is published best-effort.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	if status != model.StatusAccepted && status != model.StatusRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be ACCEPTED or REJECTED"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Components.UpdateStatus(ctx, id, status); err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "component already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	h.purgeListingCache(c)
	h.publishReviewed(c, id, status)

	return c.JSON(http.StatusOK, echo.Map{"message": "status updated", "status": status})
}

// Delete handles DELETE /v1/admin/components/:id.
func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Components.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.purgeListingCache(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "component deleted"})
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, 100, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UserComponents handles GET /v1/admin/users/:id/components: one user's
// submissions in every state, for the per-user audit view.
func (h *AdminHandler) UserComponents(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Components.ListByOwner(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load components"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rows})
}

// DeleteUser handles DELETE /v1/admin/users/:id. The repository runs
// the whole cascade (user, components, ratings both directions) in one
// transaction; there is no partially-deleted outcome to report.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.DeleteCascade(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.purgeListingCache(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *AdminHandler) purgeListingCache(c echo.Context) {
	if h.RDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := purge(ctx, h.RDB, h.CachePrefix); err != nil {
		c.Logger().Warnf("cache purge failed: %v", err)
	}
}

func (h *AdminHandler) publishReviewed(c echo.Context, id uint64, decision string) {
	reviewerID, _ := getUserID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row, err := h.Components.GetByID(ctx, id)
	if err != nil {
		c.Logger().Warnf("load reviewed component %d failed: %v", id, err)
		return
	}
	// Best effort: the transition is already committed, the store is the
	// source of truth and the event stream only feeds the audit log.
	_ = queue_publisher.PublishComponentReviewed(ctx, queue.ComponentReviewedEvent{
		ComponentID: row.ID,
		OwnerID:     row.Owner.ID,
		Category:    row.Category,
		Decision:    decision,
		ReviewerID:  reviewerID,
		ReviewedAt:  time.Now().UTC().Format(time.RFC3339),
	})
}

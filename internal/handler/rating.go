package handler

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uicode-market/uicode/internal/repository"
)

// RatingHandler exposes the single voting endpoint.
type RatingHandler struct {
	Ratings *repository.RatingRepo
}

func NewRatingHandler(ratings *repository.RatingRepo) *RatingHandler {
	if ratings == nil {
		panic("nil repository passed to NewRatingHandler")
	}
	return &RatingHandler{Ratings: ratings}
}

type rateReq struct {
	Score int `json:"score"`
}

// Rate handles POST /v1/components/:id/rate. One score per (user,
// component): a second vote from the same user replaces the first and
// the aggregate moves by the delta, so review_count never grows on a
// revote. Only ACCEPTED components are rateable.
func (h *RatingHandler) Rate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score < 1 || req.Score > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, count, err := h.Ratings.Upsert(ctx, uid, id, uint8(req.Score))
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "component not found"})
		case repository.ErrNotRateable:
			return c.JSON(http.StatusConflict, echo.Map{"error": "component is not accepting ratings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rating failed"})
	}

	avg := 0.0
	if count > 0 {
		avg = math.Round(float64(sum)/float64(count)*10) / 10
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "rating submitted",
		"rating":       avg,
		"review_count": count,
	})
}

package repository

import (
	"context"
	"math"
	"strings"

	"github.com/uicode-market/uicode/internal/catalog"
	"github.com/uicode-market/uicode/internal/model"
)

// ComponentSearchQuery defines filters & pagination for the public listing.
type ComponentSearchQuery struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// OwnerPart is the slice of the owning user exposed on public rows.
type OwnerPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ComponentRow is a component joined with its owner and rating
// aggregate, shaped the way every listing and detail endpoint returns
// it. Rating is the mean rounded to one decimal for display; the
// stored sum/count keep full precision.
type ComponentRow struct {
	ID          uint64    `json:"id"`
	Category    string    `json:"category"`
	HTMLCode    string    `json:"html_code"`
	CSSCode     string    `json:"css_code"`
	Status      string    `json:"status"`
	CreatedAt   string    `json:"created_at"`
	Owner       OwnerPart `json:"owner"`
	Rating      float64   `json:"rating"`
	ReviewCount uint64    `json:"review_count"`
}

func displayAverage(sum, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}

// SearchPublic returns ACCEPTED components matching the query, newest
// first. A search term matches the category or the markup itself,
// case-insensitively; an empty or "All" category applies no category
// constraint. The total count is computed with the same filters so
// callers can paginate.
func (r *ComponentRepo) SearchPublic(ctx context.Context, q ComponentSearchQuery) ([]ComponentRow, int64, error) {
	where := []string{"cp.status = ?"}
	args := []any{model.StatusAccepted}

	if q.Category != "" && q.Category != catalog.All {
		where = append(where, "cp.category = ?")
		args = append(args, q.Category)
	}
	if q.Search != "" {
		where = append(where, "(LOWER(cp.category) LIKE ? OR LOWER(cp.html_code) LIKE ?)")
		needle := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, needle, needle)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM components cp
		WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	dataSQL := `SELECT ` + componentRowColumns + `
		FROM components cp
		JOIN users u ON u.id = cp.user_id
		WHERE ` + cond + `
		ORDER BY cp.created_at DESC, cp.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)
	out, err := r.queryRows(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

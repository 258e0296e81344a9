package repository

import (
	"context"
	"database/sql"

	"github.com/uicode-market/uicode/internal/model"
)

type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert records one vote per (user, component) and keeps the component
// aggregate consistent. A first vote inserts a rating row and bumps
// both sum and count; a revote rewrites the existing row and applies
// only the delta to the sum, leaving the count untouched. The component
// row is locked so concurrent votes on the same component serialize on
// the store.
//
// Only ACCEPTED components collect ratings; anything else returns
// ErrNotRateable. Returns the updated aggregate (sum, count).
func (r *RatingRepo) Upsert(ctx context.Context, userID, componentID uint64, score uint8) (uint64, uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var status string
	var sum, count uint64
	err = tx.QueryRowContext(ctx,
		"SELECT status, rating_sum, rating_count FROM components WHERE id=? LIMIT 1 FOR UPDATE",
		componentID).Scan(&status, &sum, &count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, ErrNotFound
		}
		return 0, 0, err
	}
	if status != model.StatusAccepted {
		return 0, 0, ErrNotRateable
	}

	var old uint8
	err = tx.QueryRowContext(ctx,
		"SELECT score FROM ratings WHERE user_id=? AND component_id=? LIMIT 1 FOR UPDATE",
		userID, componentID).Scan(&old)
	switch err {
	case nil:
		// Revote: rewrite the row, adjust the sum by the delta.
		if _, err := tx.ExecContext(ctx,
			"UPDATE ratings SET score=? WHERE user_id=? AND component_id=?",
			score, userID, componentID); err != nil {
			return 0, 0, err
		}
		sum = sum - uint64(old) + uint64(score)
	case sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ratings (user_id, component_id, score) VALUES (?,?,?)",
			userID, componentID, score); err != nil {
			return 0, 0, err
		}
		sum += uint64(score)
		count++
	default:
		return 0, 0, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE components SET rating_sum=?, rating_count=? WHERE id=?",
		sum, count, componentID); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return sum, count, nil
}

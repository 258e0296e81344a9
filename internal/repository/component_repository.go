package repository

import (
	"context"
	"database/sql"

	"github.com/uicode-market/uicode/internal/model"
)

type ComponentRepo struct{ DB *sql.DB }

func NewComponentRepo(db *sql.DB) *ComponentRepo { return &ComponentRepo{DB: db} }

// Create inserts a new component owned by ownerID. Every submission
// starts in PENDING regardless of who submits it; only an admin review
// moves it out of that state.
func (r *ComponentRepo) Create(ctx context.Context, ownerID uint64, category, htmlCode, cssCode string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO components (user_id, category, html_code, css_code, status) VALUES (?,?,?,?,?)",
		ownerID, category, htmlCode, cssCode, model.StatusPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const componentRowColumns = `
	cp.id, cp.user_id, cp.category, cp.html_code, cp.css_code, cp.status,
	cp.rating_sum, cp.rating_count,
	DATE_FORMAT(cp.created_at, '%Y-%m-%dT%TZ') AS created_at,
	u.email, COALESCE(u.username, '')`

func scanComponentRow(s interface{ Scan(...any) error }) (ComponentRow, error) {
	var row ComponentRow
	var sum, count uint64
	err := s.Scan(
		&row.ID,
		&row.Owner.ID,
		&row.Category,
		&row.HTMLCode,
		&row.CSSCode,
		&row.Status,
		&sum,
		&count,
		&row.CreatedAt,
		&row.Owner.Email,
		&row.Owner.Username,
	)
	if err != nil {
		return ComponentRow{}, err
	}
	row.Rating = displayAverage(sum, count)
	row.ReviewCount = count
	return row, nil
}

// GetByID returns one component joined with its owner and rating
// aggregate, regardless of status. Callers decide whether a
// non-ACCEPTED row may be shown (author dashboard, admin review).
func (r *ComponentRepo) GetByID(ctx context.Context, id uint64) (ComponentRow, error) {
	row, err := scanComponentRow(r.DB.QueryRowContext(ctx, `
		SELECT `+componentRowColumns+`
		FROM components cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.id = ?
		LIMIT 1`, id))
	if err == sql.ErrNoRows {
		return ComponentRow{}, ErrNotFound
	}
	return row, err
}

// ListByOwner returns all components submitted by one user, any status,
// newest first. Backs both the author's own dashboard and the admin
// per-user audit view.
func (r *ComponentRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]ComponentRow, error) {
	return r.queryRows(ctx, `
		SELECT `+componentRowColumns+`
		FROM components cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.user_id = ?
		ORDER BY cp.created_at DESC, cp.id DESC`, ownerID)
}

// ListPending returns the moderation queue: every PENDING component,
// oldest submission first so reviewers work through the backlog in order.
func (r *ComponentRepo) ListPending(ctx context.Context) ([]ComponentRow, error) {
	return r.queryRows(ctx, `
		SELECT `+componentRowColumns+`
		FROM components cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.status = ?
		ORDER BY cp.created_at ASC, cp.id ASC`, model.StatusPending)
}

// UpdateStatus applies a moderation decision. The state machine is
// PENDING -> {ACCEPTED, REJECTED}; both outcomes are terminal.
// Re-issuing the decision a row already carries is a no-op reported as
// success, while trying to move a terminal row anywhere else returns
// ErrConflict. The row is locked for the duration of the check so two
// concurrent reviews cannot both win.
func (r *ComponentRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM components WHERE id=? LIMIT 1 FOR UPDATE", id).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if current == status {
		return tx.Commit() // idempotent repeat of the same decision
	}
	if current != model.StatusPending {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE components SET status=? WHERE id=?", status, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete permanently removes a component and every rating referencing
// it, in one transaction.
func (r *ComponentRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM ratings WHERE component_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM components WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// OwnerOf returns the owner id of a component. Used by the delete
// handler to grant the self-service path to the author.
func (r *ComponentRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM components WHERE id=? LIMIT 1", id).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return ownerID, err
}

func (r *ComponentRepo) queryRows(ctx context.Context, query string, args ...any) ([]ComponentRow, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ComponentRow{}
	for rows.Next() {
		row, err := scanComponentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uicode-market/uicode/internal/model"
	"github.com/uicode-market/uicode/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The public registration
// endpoint always passes model.RoleUser; admins are provisioned out of
// band, directly in the database.
func (r *UserRepo) Create(ctx context.Context, email, username, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, role) VALUES (?,?,?,?)",
		email, username, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,role,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,role,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns all users ordered by id, for the admin user audit view.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,username,password_hash,role,created_at,updated_at FROM users ORDER BY id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteCascade removes a user together with everything that references
// them: ratings they cast, ratings cast on their components, their
// components, and finally the user row itself. The whole cascade runs
// inside one transaction so a failure leaves no partial deletion behind.
// Refresh tokens go with the user via the schema's ON DELETE CASCADE.
func (r *UserRepo) DeleteCascade(ctx context.Context, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Verify the user exists before touching anything.
	var exists uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id=? LIMIT 1", userID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	// Ratings the user cast on anyone's components.
	if _, err := tx.ExecContext(ctx, "DELETE FROM ratings WHERE user_id=?", userID); err != nil {
		return err
	}
	// Ratings other users cast on this user's components.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM ratings WHERE component_id IN (SELECT id FROM components WHERE user_id=?)", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM components WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", userID); err != nil {
		return err
	}
	return tx.Commit()
}

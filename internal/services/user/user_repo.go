package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepo handles database operations for the local user mirror
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert creates the mirror row on first login and refreshes it on every
// subsequent one. The provider remains authoritative for every field here.
func (r *UserRepo) Upsert(ctx context.Context, u *User) (*User, error) {
	query := `
        INSERT INTO users (id, username, name, email, email_verified, role, permissions)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            username = EXCLUDED.username,
            name = EXCLUDED.name,
            email = EXCLUDED.email,
            email_verified = EXCLUDED.email_verified,
            role = EXCLUDED.role,
            permissions = EXCLUDED.permissions,
            updated_at = NOW()
        RETURNING id, username, name, email, email_verified, role, permissions, created_at, updated_at
    `

	var stored User
	err := r.db.GetContext(ctx, &stored, query, u.ID, u.Username, u.Name, u.Email, u.EmailVerified, u.Role, u.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &stored, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
        SELECT id, username, name, email, email_verified, role, permissions, created_at, updated_at
        FROM users
        WHERE id = $1
    `

	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// SetEmail mirrors a provider-side email change. The verified flag always
// resets until the new address is explicitly confirmed.
func (r *UserRepo) SetEmail(ctx context.Context, id, email string) error {
	query := `
        UPDATE users
        SET email = $2, email_verified = FALSE, updated_at = NOW()
        WHERE id = $1
    `

	result, err := r.db.ExecContext(ctx, query, id, email)
	if err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetEmailVerified flips the verification flag after a confirmed code.
func (r *UserRepo) SetEmailVerified(ctx context.Context, id string, verified bool) error {
	query := `
        UPDATE users
        SET email_verified = $2, updated_at = NOW()
        WHERE id = $1
    `

	result, err := r.db.ExecContext(ctx, query, id, verified)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// AuthRepository stores admin credentials in admin_users.
type AuthRepository struct {
	db      DBTX
	timeout time.Duration
}

func NewAuthRepository(db DBTX, queryTimeout time.Duration) *AuthRepository {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &AuthRepository{db: db, timeout: queryTimeout}
}

// FindByEmail returns domain.ErrUserNotFound when no admin has that email.
func (r *AuthRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, email, name, password_hash, last_login_at, created_at
		FROM admin_users
		WHERE email = $1`

	var (
		u         domain.AdminUser
		lastLogin sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &lastLogin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapErr("find admin", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// Create inserts user and returns it with its assigned ID. A duplicate email
// yields domain.ErrUserExists.
func (r *AuthRepository) Create(ctx context.Context, user *domain.AdminUser) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO admin_users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	created := *user
	err := r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.PasswordHash).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		err = wrapErr("insert admin", err)
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserExists, user.Email)
		}
		return nil, err
	}
	return &created, nil
}

func (r *AuthRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $1 WHERE id = $2`, at, id); err != nil {
		return wrapErr("update last login", err)
	}
	return nil
}

package ports

import (
	"context"
	"time"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// AuthRepository defines persistence for admin credential records.
type AuthRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	Create(ctx context.Context, user *domain.AdminUser) (*domain.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// LoginLimiter throttles repeated failed logins.
type LoginLimiter interface {
	// Allow returns domain.ErrRateLimited when the email or ip exhausted its budget.
	Allow(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email string) error
}

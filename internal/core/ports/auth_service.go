package ports

import (
	"context"
	"time"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// LoginResult carries a freshly issued session token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.AdminUser
}

// AuthService authenticates admins and verifies their sessions.
type AuthService interface {
	Authenticate(ctx context.Context, email, password, ip string) (*LoginResult, error)
	VerifySession(token string) (*domain.Session, error)
	Logout(ctx context.Context, session *domain.Session, ip string)
	Provision(ctx context.Context, email, name, password string) (*domain.AdminUser, error)
}

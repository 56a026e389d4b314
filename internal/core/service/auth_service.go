package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltaic/energy-cms/internal/pkg/metrics"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
	"github.com/voltaic/energy-cms/internal/pkg/validate"
)

const minPasswordLength = 8

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// AuthService implements credential verification and stateless sessions.
type AuthService struct {
	repo     ports.AuthRepository
	limiter  ports.LoginLimiter
	activity ports.ActivityRecorder
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewAuthService wires an AuthService. A nil limiter disables throttling and a
// nil recorder discards activity events.
func NewAuthService(
	repo ports.AuthRepository,
	limiter ports.LoginLimiter,
	activity ports.ActivityRecorder,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = domain.DefaultSessionTTL
	}
	if limiter == nil {
		limiter = unlimited{}
	}
	if activity == nil {
		activity = DiscardActivity{}
	}
	return &AuthService{
		repo:     repo,
		limiter:  limiter,
		activity: activity,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// TokenTTL reports how long issued sessions stay valid.
func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

// Authenticate verifies an email/password pair and issues a session token.
// Unknown emails and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password, ip string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}

	if err := s.limiter.Allow(ctx, email, ip); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			s.log.Warn().Str("email", email).Str("ip", ip).Msg("login rate limited")
			return nil, err
		}
		s.log.Warn().Err(err).Str("email", email).Msg("login limiter check failed, allowing attempt")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			s.rejected(ctx, email, ip)
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.rejected(ctx, email, ip)
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to update last login")
	} else {
		user.LastLoginAt = &now
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login limiter")
	}

	token, expiresAt, err := s.issue(user, now)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authenticate: sign token: %w", err)
	}

	s.activity.Record(domain.ActivityEvent{
		Actor:      user.Email,
		Action:     domain.ActionLogin,
		IP:         ip,
		OccurredAt: now,
	})
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("admin logged in")

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// VerifySession decodes a session token. Missing, tampered and expired tokens
// all yield domain.ErrUnauthenticated.
func (s *AuthService) VerifySession(token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	session := &domain.Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return session, nil
}

// Logout records the end of a session. The token itself is stateless, so
// revocation is the caller deleting the cookie.
func (s *AuthService) Logout(_ context.Context, session *domain.Session, ip string) {
	if session == nil {
		return
	}
	s.activity.Record(domain.ActivityEvent{
		Actor:      session.Email,
		Action:     domain.ActionLogout,
		IP:         ip,
		OccurredAt: s.now(),
	})
}

// Provision creates an admin credential record. It is used by the CLI and the seeder.
func (s *AuthService) Provision(ctx context.Context, email, name, password string) (*domain.AdminUser, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validate.Validator().Var(email, "required,email"); err != nil {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("provision: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("admin provisioned")
	return created, nil
}

func (s *AuthService) issue(user *domain.AdminUser, now time.Time) (string, time.Time, error) {
	// NumericDate has whole-second precision; the reported expiry must match exp.
	now = now.Truncate(time.Second)
	expiresAt := now.Add(s.tokenTTL)
	claims := sessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) rejected(ctx context.Context, email, ip string) {
	metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
	if err := s.limiter.RecordFailure(ctx, email, ip); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
	}
	s.activity.Record(domain.ActivityEvent{
		Actor:      email,
		Action:     domain.ActionLoginFailed,
		IP:         ip,
		OccurredAt: s.now(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// unlimited is the LoginLimiter used when throttling is disabled.
type unlimited struct{}

func (unlimited) Allow(context.Context, string, string) error         { return nil }
func (unlimited) RecordFailure(context.Context, string, string) error { return nil }
func (unlimited) Reset(context.Context, string) error                 { return nil }

// DiscardActivity is the ActivityRecorder used when no activity store is configured.
type DiscardActivity struct{}

func (DiscardActivity) Record(domain.ActivityEvent) {}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	users          map[string]*domain.AdminUser
	findErr        error
	lastLoginErr   error
	lastLoginCalls int
	nextID         int64
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.AdminUser), nextID: 1}
}

func cloneUser(u *domain.AdminUser) *domain.AdminUser {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) add(t *testing.T, email, name, password string) *domain.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := r.Create(context.Background(), &domain.AdminUser{Email: email, Name: name, PasswordHash: string(hash)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.AdminUser) (*domain.AdminUser, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	created := cloneUser(user)
	created.ID = r.nextID
	r.nextID++
	r.users[created.Email] = cloneUser(created)
	return created, nil
}

func (r *stubAuthRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	r.lastLoginCalls++
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	for _, u := range r.users {
		if u.ID == id {
			ts := at
			u.LastLoginAt = &ts
		}
	}
	return nil
}

type stubLimiter struct {
	allowErr error
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter { return &stubLimiter{failures: make(map[string]int)} }

func (l *stubLimiter) Allow(context.Context, string, string) error { return l.allowErr }

func (l *stubLimiter) RecordFailure(_ context.Context, email, _ string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(context.Context, string) error {
	l.resets++
	return nil
}

type recordingActivity struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (r *recordingActivity) Record(e domain.ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingActivity) last() domain.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.ActivityEvent{}
	}
	return r.events[len(r.events)-1]
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type authFixture struct {
	svc      *AuthService
	repo     *stubAuthRepo
	limiter  *stubLimiter
	activity *recordingActivity
	clock    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:     newStubAuthRepo(),
		limiter:  newStubLimiter(),
		activity: &recordingActivity{},
		clock:    fixedNow,
	}
	f.svc = NewAuthService(f.repo, f.limiter, f.activity, "secret", 24*time.Hour, discardLogger).
		WithClock(func() time.Time { return f.clock })
	return f
}

// ---------------------------------------------------------------------------
// Authenticate
// ---------------------------------------------------------------------------

func TestAuthService_Authenticate_Success(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.repo.add(t, "admin@example.com", "Admin User", "admin123")

	res, err := f.svc.Authenticate(context.Background(), "Admin@Example.com ", "admin123", "10.0.0.1")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if res.User.ID != admin.ID || res.User.Email != "admin@example.com" || res.User.Name != "Admin User" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if !res.ExpiresAt.Equal(fixedNow.Add(24 * time.Hour)) {
		t.Fatalf("expected expiry 24h after issuance, got %v", res.ExpiresAt)
	}
	if res.User.LastLoginAt == nil || !res.User.LastLoginAt.Equal(fixedNow) {
		t.Fatalf("expected last login to be stamped, got %v", res.User.LastLoginAt)
	}
	if f.limiter.resets != 1 {
		t.Fatalf("expected limiter reset, got %d", f.limiter.resets)
	}
	if got := f.activity.last(); got.Action != domain.ActionLogin || got.IP != "10.0.0.1" {
		t.Fatalf("unexpected activity event: %+v", got)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixedNow }))
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if parsed.Method.Alg() != "HS256" {
		t.Fatalf("expected HS256, got %s", parsed.Method.Alg())
	}
	if claims["email"] != "admin@example.com" || claims["name"] != "Admin User" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if claims["id"] != float64(admin.ID) {
		t.Fatalf("expected id claim %d, got %v", admin.ID, claims["id"])
	}
	if claims["iat"] != float64(fixedNow.Unix()) || claims["exp"] != float64(fixedNow.Add(24*time.Hour).Unix()) {
		t.Fatalf("unexpected iat/exp: %v %v", claims["iat"], claims["exp"])
	}
}

func TestAuthService_Authenticate_SameErrorForUnknownAndWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "admin@example.com", "Admin User", "admin123")

	_, errUnknown := f.svc.Authenticate(context.Background(), "nobody@example.com", "x", "")
	_, errWrong := f.svc.Authenticate(context.Background(), "admin@example.com", "wrong-password", "")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v and %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown, errWrong)
	}
	if f.limiter.failures["nobody@example.com"] != 1 || f.limiter.failures["admin@example.com"] != 1 {
		t.Fatalf("expected failures to be recorded: %v", f.limiter.failures)
	}
	if got := f.activity.last(); got.Action != domain.ActionLoginFailed {
		t.Fatalf("expected login_failed event, got %+v", got)
	}
}

func TestAuthService_Authenticate_Validation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct{ email, password string }{
		{"", "secret"},
		{"admin@example.com", ""},
		{"   ", "secret"},
	}
	for _, tc := range cases {
		if _, err := f.svc.Authenticate(context.Background(), tc.email, tc.password, ""); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Authenticate(%q, %q): expected ErrValidation, got %v", tc.email, tc.password, err)
		}
	}
}

func TestAuthService_Authenticate_LastLoginFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "admin@example.com", "Admin User", "admin123")
	f.repo.lastLoginErr = errors.New("db write failed")

	res, err := f.svc.Authenticate(context.Background(), "admin@example.com", "admin123", "")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected a token")
	}
	if f.repo.lastLoginCalls != 1 {
		t.Fatalf("expected one last-login update, got %d", f.repo.lastLoginCalls)
	}
}

func TestAuthService_Authenticate_RateLimited(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "admin@example.com", "Admin User", "admin123")
	f.limiter.allowErr = domain.ErrRateLimited

	if _, err := f.svc.Authenticate(context.Background(), "admin@example.com", "admin123", ""); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestAuthService_Authenticate_LimiterOutageFailsOpen(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "admin@example.com", "Admin User", "admin123")
	f.limiter.allowErr = errors.New("redis: connection refused")

	if _, err := f.svc.Authenticate(context.Background(), "admin@example.com", "admin123", ""); err != nil {
		t.Fatalf("expected login to proceed, got %v", err)
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.findErr = errors.Join(domain.ErrUnavailable, errors.New("dial tcp: refused"))

	_, err := f.svc.Authenticate(context.Background(), "admin@example.com", "admin123", "")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("an outage must not be reported as bad credentials")
	}
}

// ---------------------------------------------------------------------------
// VerifySession
// ---------------------------------------------------------------------------

func TestAuthService_VerifySession_ValidStrictlyBeforeExpiry(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.add(t, "admin@example.com", "Admin User", "admin123")

	res, err := f.svc.Authenticate(context.Background(), "admin@example.com", "admin123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	f.clock = res.ExpiresAt.Add(-time.Second)
	session, err := f.svc.VerifySession(res.Token)
	if err != nil {
		t.Fatalf("expected valid session one second before expiry, got %v", err)
	}
	if session.Email != "admin@example.com" || session.Name != "Admin User" || session.UserID != res.User.ID {
		t.Fatalf("unexpected session: %+v", session)
	}
	if !session.IssuedAt.Equal(fixedNow) || !session.ExpiresAt.Equal(res.ExpiresAt) {
		t.Fatalf("unexpected timestamps: %+v", session)
	}

	f.clock = res.ExpiresAt
	if _, err := f.svc.VerifySession(res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected rejection at expiry, got %v", err)
	}

	f.clock = res.ExpiresAt.Add(time.Hour)
	if _, err := f.svc.VerifySession(res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected rejection after expiry, got %v", err)
	}
}

func TestAuthService_VerifySession_SubSecondClock(t *testing.T) {
	f := newAuthFixture(t)
	f.clock = fixedNow.Add(900 * time.Millisecond)
	f.repo.add(t, "admin@example.com", "Admin User", "admin123")

	res, err := f.svc.Authenticate(context.Background(), "admin@example.com", "admin123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.ExpiresAt.Nanosecond() != 0 {
		t.Fatalf("expiry must be whole seconds to match exp, got %v", res.ExpiresAt)
	}

	f.clock = res.ExpiresAt.Add(-500 * time.Millisecond)
	session, err := f.svc.VerifySession(res.Token)
	if err != nil {
		t.Fatalf("expected valid session before the reported expiry, got %v", err)
	}
	if !session.ExpiresAt.Equal(res.ExpiresAt) {
		t.Fatalf("session expiry %v differs from reported %v", session.ExpiresAt, res.ExpiresAt)
	}

	f.clock = res.ExpiresAt
	if _, err := f.svc.VerifySession(res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected rejection at expiry, got %v", err)
	}
}

func TestAuthService_VerifySession_Rejections(t *testing.T) {
	f := newAuthFixture(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": 1, "email": "admin@example.com", "exp": fixedNow.Add(time.Hour).Unix(),
	})
	foreignSigned, _ := foreign.SignedString([]byte("another-secret"))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1, "email": "admin@example.com"})
	noExpSigned, _ := noExp.SignedString([]byte("secret"))

	wrongAlg := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id": 1, "email": "admin@example.com", "exp": fixedNow.Add(time.Hour).Unix(),
	})
	wrongAlgSigned, _ := wrongAlg.SignedString([]byte("secret"))

	cases := map[string]string{
		"absent":          "",
		"garbage":         "not-a-token",
		"wrong signature": foreignSigned,
		"missing expiry":  noExpSigned,
		"wrong algorithm": wrongAlgSigned,
	}
	for name, token := range cases {
		if _, err := f.svc.VerifySession(token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

// ---------------------------------------------------------------------------
// Logout / Provision
// ---------------------------------------------------------------------------

func TestAuthService_Logout_RecordsActivity(t *testing.T) {
	f := newAuthFixture(t)

	f.svc.Logout(context.Background(), nil, "")
	if len(f.activity.events) != 0 {
		t.Fatalf("logout without session should record nothing")
	}

	f.svc.Logout(context.Background(), &domain.Session{Email: "admin@example.com"}, "10.0.0.9")
	if got := f.activity.last(); got.Action != domain.ActionLogout || got.Actor != "admin@example.com" {
		t.Fatalf("unexpected activity event: %+v", got)
	}
}

func TestAuthService_Provision(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Provision(context.Background(), " Ops@Example.com", "Ops", "longenough")
	if err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}
	if user.Email != "ops@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "longenough" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if _, err := f.svc.Provision(context.Background(), "ops@example.com", "Ops", "longenough"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Provision_Validation(t *testing.T) {
	f := newAuthFixture(t)

	cases := []struct{ email, name, password string }{
		{"not-an-email", "Ops", "longenough"},
		{"ops@example.com", "", "longenough"},
		{"ops@example.com", "Ops", "short"},
	}
	for _, tc := range cases {
		if _, err := f.svc.Provision(context.Background(), tc.email, tc.name, tc.password); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Provision(%q, %q, %q): expected ErrValidation, got %v", tc.email, tc.name, tc.password, err)
		}
	}
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

// stubVerifier accepts exactly one token.
type stubVerifier struct {
	valid string
}

func (s stubVerifier) VerifySession(token string) (*domain.Session, error) {
	if token == "" || token != s.valid {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.Session{UserID: 1, Email: "admin@example.com", Name: "Admin User"}, nil
}

func TestRequireSession_Cookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.AddCookie(&http.Cookie{Name: domain.SessionCookieName, Value: "good"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := RequireSession(stubVerifier{valid: "good"})(func(c echo.Context) error {
		called = true
		if s := SessionFrom(c); s == nil || s.Email != "admin@example.com" {
			t.Fatalf("session not injected: %+v", s)
		}
		if a := ActorFrom(c); a.UserID != 1 || a.Email != "admin@example.com" {
			t.Fatalf("unexpected actor: %+v", a)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestRequireSession_BearerFallback(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := RequireSession(stubVerifier{valid: "good"})(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("expected bearer token to be accepted, got %v", err)
	}
}

func TestRequireSession_Rejections(t *testing.T) {
	cases := map[string]func(*http.Request){
		"absent":        func(*http.Request) {},
		"bad cookie":    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: domain.SessionCookieName, Value: "forged"}) },
		"bad header":    func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") },
		"wrong scheme":  func(r *http.Request) { r.Header.Set("Authorization", "Basic good") },
		"missing token": func(r *http.Request) { r.Header.Set("Authorization", "Bearer") },
	}
	for name, setup := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
		setup(req)
		c := e.NewContext(req, httptest.NewRecorder())

		handler := RequireSession(stubVerifier{valid: "good"})(func(c echo.Context) error {
			t.Fatalf("%s: next must not be called", name)
			return nil
		})
		if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestTokenFrom_CookieWins(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: domain.SessionCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	c := e.NewContext(req, httptest.NewRecorder())

	if got := TokenFrom(c); got != "from-cookie" {
		t.Fatalf("expected cookie token, got %q", got)
	}
}

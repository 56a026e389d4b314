package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

const sessionContextKey = "session"

// SessionVerifier decodes session tokens; ports.AuthService satisfies it.
type SessionVerifier interface {
	VerifySession(token string) (*domain.Session, error)
}

// RequireSession rejects requests without a valid session with a JSON 401 and
// injects the decoded session into the context otherwise.
func RequireSession(auth SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := auth.VerifySession(TokenFrom(c))
			if err != nil {
				return domain.ErrUnauthenticated
			}
			c.Set(sessionContextKey, session)
			return next(c)
		}
	}
}

// TokenFrom returns the session token carried by the request: the
// admin_token cookie, or else an "Authorization: Bearer" header.
func TokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie(domain.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionFrom returns the session injected by RequireSession or PageGuard.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(sessionContextKey).(*domain.Session)
	return s
}

// ActorFrom identifies the caller for audit records.
func ActorFrom(c echo.Context) domain.Actor {
	if s := SessionFrom(c); s != nil {
		return s.Actor(c.RealIP())
	}
	return domain.Actor{IP: c.RealIP()}
}

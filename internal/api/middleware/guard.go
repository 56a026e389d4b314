package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/core/domain"
)

const (
	AdminPrefix = "/admin"
	LoginPath   = "/admin/login"
	assetPrefix = "/admin/assets/"
)

// publicFiles are admin paths outside assetPrefix that browsers fetch unprompted.
var publicFiles = map[string]bool{
	"/admin/favicon.ico": true,
}

// Decision is the outcome of the admin page guard.
type Decision int

const (
	// Allow lets the request through unchanged.
	Allow Decision = iota
	// RedirectToLogin sends the browser to LoginPath.
	RedirectToLogin
)

// Guarded reports whether requestPath is an admin page that needs a session.
// Only the login page, the asset tree and publicFiles are public.
func Guarded(requestPath string) bool {
	p := path.Clean("/" + requestPath)
	if p != AdminPrefix && !strings.HasPrefix(p, AdminPrefix+"/") {
		return false
	}
	if p == LoginPath {
		return false
	}
	if strings.HasPrefix(p+"/", assetPrefix) {
		return false
	}
	return !publicFiles[p]
}

// Decide is the admin page guard. It has no side effects; the session is
// returned when the request is allowed on the strength of a valid token.
func Decide(requestPath, token string, auth SessionVerifier) (Decision, *domain.Session) {
	if !Guarded(requestPath) {
		return Allow, nil
	}
	session, err := auth.VerifySession(token)
	if err != nil {
		return RedirectToLogin, nil
	}
	return Allow, session
}

// PageGuard applies Decide to every request and performs the redirect.
func PageGuard(auth SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision, session := Decide(c.Request().URL.Path, TokenFrom(c), auth)
			if decision == RedirectToLogin {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			if session != nil {
				c.Set(sessionContextKey, session)
			}
			return next(c)
		}
	}
}

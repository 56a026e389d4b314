package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voltaic/energy-cms/internal/api/middleware"
	"github.com/voltaic/energy-cms/internal/core/domain"
	"github.com/voltaic/energy-cms/internal/core/ports"
)

type AuthHandler struct {
	auth         ports.AuthService
	sessionTTL   time.Duration
	secureCookie bool
}

// NewAuthHandler returns the login/logout/session endpoints. The cookie lives
// as long as the token; secureCookie is set outside development.
func NewAuthHandler(auth ports.AuthService, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// loginResponse is the login body. The token travels only in the cookie.
type loginResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    userView `json:"user"`
}

// Login verifies credentials and sets the session cookie.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      429   {object}  api.errorResponse
// @Failure      503   {object}  api.errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.Authenticate(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(res.Token, int(h.sessionTTL.Seconds())))
	return c.JSON(http.StatusOK, loginResponse{
		Success: true,
		Message: "login successful",
		User:    userView{ID: res.User.ID, Email: res.User.Email, Name: res.User.Name},
	})
}

// Logout deletes the session cookie. It succeeds whether or not a session exists.
//
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if session, err := h.auth.VerifySession(middleware.TokenFrom(c)); err == nil {
		h.auth.Logout(c.Request().Context(), session, c.RealIP())
	}
	c.SetCookie(h.sessionCookie("", -1))
	return respond(c, http.StatusOK, nil, "logged out")
}

// Session returns the claims of the caller's session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  envelope{data=domain.Session}
// @Failure      401  {object}  api.errorResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	session, err := h.auth.VerifySession(middleware.TokenFrom(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, session, "")
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

package domain

import "time"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "admin_token"

// DefaultSessionTTL bounds a session token's lifetime.
const DefaultSessionTTL = 24 * time.Hour

// Session is the decoded view of a valid session token.
type Session struct {
	UserID    int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Actor returns the session holder as an Actor for audit purposes.
func (s Session) Actor(ip string) Actor {
	return Actor{UserID: s.UserID, Email: s.Email, IP: ip}
}

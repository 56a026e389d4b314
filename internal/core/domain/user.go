package domain

import "time"

// AdminUser is a credential record for the admin panel.
type AdminUser struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Actor identifies who performed an admin operation.
type Actor struct {
	UserID int64
	Email  string
	IP     string
}

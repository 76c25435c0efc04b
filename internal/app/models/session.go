package models

import "time"

// Session is a server-side session record keyed by an opaque token carried in
// a cookie. The user fields are a snapshot taken at authentication time, not
// a live reference: a promote/demote after login does not change the role
// seen by an already-issued session until the next login.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	UserRole  string    `json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's TTL has elapsed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session snapshot carries the admin role.
func (s *Session) IsAdmin() bool {
	return s.UserRole == RoleAdmin
}

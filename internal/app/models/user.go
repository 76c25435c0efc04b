package models

import "time"

// Roles recognised by the authorization gate. The model is binary: there is
// no hierarchy beyond user < admin.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MaxNameLength is the upper bound on account display names.
const MaxNameLength = 30

// User is a stored account record. Name, email and password hash are fixed at
// signup; only the role is mutated afterwards (by promote/demote).
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the record carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

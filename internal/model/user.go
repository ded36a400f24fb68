package model

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the acting identity attached to every workflow call: the
// authenticated caller's id, display fields, and role. The auth layer
// produces it from validated token claims.
type Identity struct {
	UserID int64
	Name   string
	Email  string
	Role   string
}

// IsZero reports whether no authenticated identity is present.
func (i Identity) IsZero() bool {
	return i.UserID == 0
}

// IsAdmin reports whether the identity carries the admin role.
// Unknown roles fail closed.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

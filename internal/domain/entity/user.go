package entity

import "time"

// UserRole distinguishes platform members from back-office admins.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	DisplayName  string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may call admin-only payment operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

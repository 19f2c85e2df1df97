package auth

import (
	"time"

	"github.com/lumen-ngo/lumen/internal/roles"
)

// User represents a staff account with its credentials.
type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Role               roles.Role
	IsActive           bool
	MustChangePassword bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Identity is the authenticated actor of a single request. It is resolved
// fresh for every request and passed by value.
type Identity struct {
	UserID             string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               roles.Role `json:"role"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
}

// Identity projects the account onto its request identity.
func (u *User) Identity() Identity {
	return Identity{
		UserID:             u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
	}
}

package users

import (
	"time"

	"github.com/lumen-ngo/lumen/internal/roles"
)

// User represents a staff account as shown to administrators.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               roles.Role `json:"role"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ListFilter narrows a user listing.
type ListFilter struct {
	Search  string
	Role    roles.Role
	Page    int
	PerPage int
}

// CreateInput is the payload for a new account.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// NewUser is what the repository inserts.
type NewUser struct {
	Email        string
	Name         string
	Role         roles.Role
	PasswordHash string
}

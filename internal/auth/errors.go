package auth

import (
	"fmt"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
)

var (
	// ErrUnauthenticated means the request carries no usable credentials.
	ErrUnauthenticated = fmt.Errorf("auth: unauthenticated: %w", httpx.ErrUnauthorized)
	// ErrSessionStore means credentials could not be checked because a
	// backing store is unreachable.
	ErrSessionStore = fmt.Errorf("auth: %w", httpx.ErrSessionStore)
	// ErrInvalidToken is returned for bearer tokens that fail verification.
	ErrInvalidToken = fmt.Errorf("auth: invalid token: %w", httpx.ErrUnauthorized)
	// ErrPasswordReuse rejects a password change to the current password.
	ErrPasswordReuse = fmt.Errorf("auth: new password must differ from the current one: %w", httpx.ErrValidation)
)

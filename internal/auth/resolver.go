package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lumen-ngo/lumen/internal/shared"
)

// IdentityStore loads identity fields for a user ID. It returns
// shared.ErrNotFound when the user does not exist.
type IdentityStore interface {
	FindIdentity(ctx context.Context, userID string) (Identity, error)
}

// Resolver turns request credentials into an Identity.
type Resolver struct {
	store  IdentityStore
	tokens *TokenManager
}

// NewResolver constructs a Resolver. tokens may be nil to disable bearer auth.
func NewResolver(store IdentityStore, tokens *TokenManager) *Resolver {
	return &Resolver{store: store, tokens: tokens}
}

// Resolve returns a fully populated Identity, ErrUnauthenticated, or an error
// wrapping ErrSessionStore when a backing store could not be reached.
func (r *Resolver) Resolve(req *http.Request) (Identity, error) {
	userID, err := r.subject(req)
	if err != nil {
		return Identity{}, err
	}
	identity, err := r.store.FindIdentity(req.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	if identity.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// subject extracts the user ID. A bearer token takes precedence over the
// cookie session.
func (r *Resolver) subject(req *http.Request) (string, error) {
	if raw, ok := BearerToken(req); ok {
		userID, err := r.tokens.Verify(raw)
		if err != nil {
			return "", ErrUnauthenticated
		}
		return userID, nil
	}
	ctx := req.Context()
	if err := shared.SessionErrorFromContext(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return "", ErrUnauthenticated
	}
	return sess.User(), nil
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	const bearer = "Bearer "
	value := r.Header.Get("Authorization")
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}
	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}

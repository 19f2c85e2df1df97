package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/shared"
)

type mapStore struct {
	identities map[string]Identity
	err        error
	calls      int
}

func (m *mapStore) FindIdentity(ctx context.Context, userID string) (Identity, error) {
	m.calls++
	if m.err != nil {
		return Identity{}, m.err
	}
	id, ok := m.identities[userID]
	if !ok {
		return Identity{}, shared.ErrNotFound
	}
	return id, nil
}

func sessionRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := &shared.Session{ID: "s1"}
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestResolveFromSession(t *testing.T) {
	store := &mapStore{identities: map[string]Identity{
		"u1": {UserID: "u1", Role: roles.Supervisor, IsActive: true},
	}}
	r := NewResolver(store, nil)

	id, err := r.Resolve(sessionRequest("u1"))
	require.NoError(t, err)
	assert.Equal(t, roles.Supervisor, id.Role)
	assert.True(t, id.IsActive)
}

func TestResolveWithoutCredentials(t *testing.T) {
	store := &mapStore{}
	r := NewResolver(store, nil)

	_, err := r.Resolve(sessionRequest(""))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, store.calls)
}

func TestResolveDeletedUserIsUnauthenticated(t *testing.T) {
	r := NewResolver(&mapStore{}, nil)

	_, err := r.Resolve(sessionRequest("gone"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveStoreFailures(t *testing.T) {
	t.Run("user lookup", func(t *testing.T) {
		r := NewResolver(&mapStore{err: errors.New("pool closed")}, nil)
		_, err := r.Resolve(sessionRequest("u1"))
		assert.ErrorIs(t, err, httpx.ErrSessionStore)
		assert.NotErrorIs(t, err, httpx.ErrUnauthorized)
	})
	t.Run("session load", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(shared.ContextWithSessionError(req.Context(), errors.New("redis down")))
		_, err := NewResolver(&mapStore{}, nil).Resolve(req)
		assert.ErrorIs(t, err, httpx.ErrSessionStore)
	})
}

func TestResolveBearerTakesPrecedence(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	store := &mapStore{identities: map[string]Identity{
		"u1": {UserID: "u1", Role: roles.Technician, IsActive: true},
		"u2": {UserID: "u2", Role: roles.Administrator, IsActive: true},
	}}
	raw, _, err := tokens.Issue("u1")
	require.NoError(t, err)

	req := sessionRequest("u2")
	req.Header.Set("Authorization", "Bearer "+raw)
	id, err := NewResolver(store, tokens).Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	req = sessionRequest("u2")
	req.Header.Set("Authorization", "Bearer garbage")
	_, err = NewResolver(store, tokens).Resolve(req)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer abc")
	token, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = BearerToken(req)
	assert.False(t, ok)
}

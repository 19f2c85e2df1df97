package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFRoundTrip(t *testing.T) {
	m := NewCSRFManager("csrfsecret")
	sess := &Session{ID: "sess-1"}

	token, err := m.EnsureToken(sess)
	require.NoError(t, err)
	again, err := m.EnsureToken(sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	require.NoError(t, m.VerifyToken(sess, token))
	require.ErrorIs(t, m.VerifyToken(sess, token+"x"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, m.VerifyToken(sess, ""), ErrCSRFTokenMissing)
}

func TestCSRFTokenBoundToSessionID(t *testing.T) {
	m := NewCSRFManager("csrfsecret")
	sess := &Session{ID: "sess-1"}
	token, err := m.EnsureToken(sess)
	require.NoError(t, err)

	sess.ID = "sess-2"
	require.ErrorIs(t, m.VerifyToken(sess, token), ErrCSRFTokenMismatch)

	fresh, err := m.EnsureToken(sess)
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)
	require.NoError(t, m.VerifyToken(sess, fresh))
}

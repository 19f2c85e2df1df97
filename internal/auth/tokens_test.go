package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	raw, expires, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	subject, err := m.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenRejections(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	raw, _, err := m.Issue("user-1")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		late := *m
		late.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		_, err := late.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Minute).Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1", Issuer: tokenIssuer}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenManagerDisabledWithoutSecret(t *testing.T) {
	assert.Nil(t, NewTokenManager("", time.Hour))
}

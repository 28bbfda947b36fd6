package service

import (
	"testing"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("token-test-secret", 15*time.Minute)
	user := &entity.User{ID: uuid.New(), Username: "gestor"}

	token, expiresAt, err := m.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
	assert.Equal(t, 15*time.Minute, m.TTL())

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "gestor", claims.Subject)
	assert.Equal(t, user.ID.String(), claims.UserID)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("token-test-secret", time.Minute)
	issued := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, _, err := m.Generate(&entity.User{ID: uuid.New(), Username: "admin"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	m := NewTokenManager("token-test-secret", time.Minute)

	other, _, err := NewTokenManager("another-secret", time.Minute).Generate(&entity.User{ID: uuid.New(), Username: "admin"})
	require.NoError(t, err)
	_, err = m.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	m := NewTokenManager("token-test-secret", time.Minute)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "admin"}).
		SignedString([]byte("token-test-secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

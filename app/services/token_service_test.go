package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-123", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "customer", claims.Role)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").Issue("user-123", "admin")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b").Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenService("test-secret").Parse("not.a.token")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		UserID: "user-123",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenService("test-secret").Parse(expired)
	assert.Error(t, err)
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	// alg=none tokens must never verify.
	claims := Claims{UserID: "user-123", Role: "admin"}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("test-secret").Parse(unsigned)
	assert.Error(t, err)
}

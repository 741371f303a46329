package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	assert.True(t, CompareHashAndPassword(hash, "password123"))
	assert.False(t, CompareHashAndPassword(hash, "password124"))
	assert.False(t, CompareHashAndPassword("not-a-hash", "password123"))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	tok, exp, err := m.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestJWTRejectsForeignSecretAndExpiry(t *testing.T) {
	tok, _, err := NewJWTManager("other", time.Hour).GenerateAccessToken("u", "u@x.io")
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).ParseAccessToken(tok)
	assert.Error(t, err)

	expired, _, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken("u", "u@x.io")
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).ParseAccessToken(expired)
	assert.Error(t, err)
}

func TestJWTRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWTManager("secret", time.Hour).ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestFormatISO(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", FormatISO(d))
	assert.Equal(t, "January 1, 2025", FormatDate(d))
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1,000.00", FormatUSD(1000))
	assert.Equal(t, "$0.00", FormatUSD(0))
	assert.Equal(t, "$105,000.50", FormatUSD(105000.5))
	assert.Equal(t, "$1,234,567.89", FormatUSD(1234567.891))
	assert.Equal(t, "$999.99", FormatUSD(999.99))
}

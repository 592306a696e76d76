package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = []byte("0123456789abcdef0123")

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken(key, 7, "c@example.com", "curl/8", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "c@example.com", claims.Email)
	assert.Equal(t, "curl/8", claims.UserAgent)
	assert.NotEmpty(t, claims.TokenID())
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)

	other, err := GenerateToken(key, 7, "c@example.com", "curl/8", time.Hour)
	require.NoError(t, err)
	otherClaims, err := ParseToken(key, other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenID(), otherClaims.TokenID())
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken(key, 1, "a@example.com", "", -time.Minute)
	require.NoError(t, err)

	wrongKey, err := GenerateToken([]byte("another-key-0123456"), 1, "a@example.com", "", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           1,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"alg none":  none,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(key, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

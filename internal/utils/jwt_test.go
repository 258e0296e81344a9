package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	access, err := NewAccessToken("secret", 99, "ADMIN", 10)
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)
	require.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), access.Exp, 5*time.Second)

	tok, err := jwt.Parse(access.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	require.Equal(t, float64(99), claims["sub"])
	require.Equal(t, "ADMIN", claims["role"])
}

func TestRefreshTokenHash(t *testing.T) {
	ref, err := NewRefreshToken(7)
	require.NoError(t, err)
	require.Len(t, ref.Raw, 96) // 48 random bytes hex encoded

	// The stored value is the digest, never the raw token.
	hash := HashRefreshRaw(ref.Raw)
	require.NotEqual(t, ref.Raw, hash)
	require.Equal(t, hash, HashRefreshRaw(ref.Raw))

	other, err := NewRefreshToken(7)
	require.NoError(t, err)
	require.NotEqual(t, ref.Raw, other.Raw)
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)
	require.True(t, VerifyPassword(hash, "hunter2"))
	require.False(t, VerifyPassword(hash, "hunter3"))
}

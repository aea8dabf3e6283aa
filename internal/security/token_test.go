package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken(accessSecret, "user-1", "citizen", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(token, accessSecret)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "citizen", claims.Role)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := NewAccessToken(accessSecret, "user-1", "citizen", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, accessSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := NewAccessToken(accessSecret, "user-1", "citizen", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSecretsAreIndependent(t *testing.T) {
	// An access token must not be replayable as a refresh token and vice
	// versa.
	access, err := NewAccessToken(accessSecret, "user-1", "citizen", time.Minute)
	require.NoError(t, err)
	refresh, err := NewRefreshToken(refreshSecret, "user-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseRefreshToken(access, refreshSecret)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken(refresh, accessSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := NewRefreshToken(refreshSecret, "user-9", time.Hour)
	require.NoError(t, err)

	claims, err := ParseRefreshToken(token, refreshSecret)
	require.NoError(t, err)
	require.Equal(t, "user-9", claims.Subject)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	first, err := NewRefreshToken(refreshSecret, "user-1", time.Hour)
	require.NoError(t, err)
	second, err := NewRefreshToken(refreshSecret, "user-1", time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHashRefreshTokenDeterministic(t *testing.T) {
	token, err := NewRefreshToken(refreshSecret, "user-1", time.Hour)
	require.NoError(t, err)

	require.Equal(t, HashRefreshToken(token), HashRefreshToken(token))
	require.NotEqual(t, HashRefreshToken(token), HashRefreshToken(token+"x"))
	require.Len(t, HashRefreshToken(token), 32)
}

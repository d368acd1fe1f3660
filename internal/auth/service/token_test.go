package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenGenerator(t *testing.T) {
	tests := []struct {
		name          string
		secret        string
		accessExpiry  time.Duration
		refreshExpiry time.Duration
	}{
		{
			name:          "standard initialization",
			secret:        "test-secret-key",
			accessExpiry:  1 * time.Hour,
			refreshExpiry: 7 * 24 * time.Hour,
		},
		{
			name:          "short expiry times",
			secret:        "short-secret",
			accessExpiry:  1 * time.Minute,
			refreshExpiry: 10 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewTokenGenerator(tt.secret, tt.accessExpiry, tt.refreshExpiry)

			assert.NotNil(t, tg)
			assert.Equal(t, tt.secret, tg.secret)
			assert.Equal(t, tt.accessExpiry, tg.accessTokenExpiry)
			assert.Equal(t, tt.refreshExpiry, tg.refreshTokenExpiry)
		})
	}
}

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	secret := "b8a3c2267dc85f855dea9b46b452bf20"
	tg := NewTokenGenerator(secret, 1*time.Hour, 7*24*time.Hour)

	accessToken, refreshToken, err := tg.GenerateTokens(42, "alice@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	// Both tokens are well-formed JWTs
	assert.Len(t, strings.Split(accessToken, "."), 3)
	assert.Len(t, strings.Split(refreshToken, "."), 3)

	// Access token carries identity, refresh token does not
	parsed, err := jwt.Parse(accessToken, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "alice@example.com", claims["email"])
	assert.Equal(t, "access", claims["type"])

	parsedRefresh, err := jwt.Parse(refreshToken, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	refreshClaims, ok := parsedRefresh.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "refresh", refreshClaims["type"])
	assert.NotContains(t, refreshClaims, "user_id")
	assert.NotContains(t, refreshClaims, "email")
}

func TestTokenGenerator_ValidateAccessToken(t *testing.T) {
	tg := NewTokenGenerator("test-secret", 1*time.Hour, 7*24*time.Hour)

	t.Run("valid token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		userID, email, err := tg.ValidateAccessToken(accessToken)

		require.NoError(t, err)
		assert.Equal(t, 42, userID)
		assert.Equal(t, "alice@example.com", email)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(refreshToken)

		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenGenerator("test-secret", -1*time.Hour, 7*24*time.Hour)
		accessToken, _, err := expired.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(accessToken)

		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenGenerator("other-secret", 1*time.Hour, 7*24*time.Hour)
		accessToken, _, err := other.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(accessToken)

		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := tg.ValidateAccessToken("not-a-token")

		assert.Error(t, err)
	})
}

func TestTokenGenerator_ValidateRefreshToken(t *testing.T) {
	tg := NewTokenGenerator("test-secret", 1*time.Hour, 7*24*time.Hour)

	t.Run("valid token", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		assert.NoError(t, tg.ValidateRefreshToken(refreshToken))
	})

	t.Run("access token is rejected", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		assert.Error(t, tg.ValidateRefreshToken(accessToken))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenGenerator("test-secret", 1*time.Hour, -1*time.Hour)
		_, refreshToken, err := expired.GenerateTokens(42, "alice@example.com")
		require.NoError(t, err)

		assert.Error(t, tg.ValidateRefreshToken(refreshToken))
	})
}

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/bookstore-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "bookstore",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: 42, Superuser: true, JTI: "jti-1"})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.Superuser)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: 7})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testJWTConfig(), token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
	assert.False(t, claims.Superuser)
}

func TestMintAccessTokenRequiresUser(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{})
	require.Error(t, err)

	cfg := testJWTConfig()
	cfg.Secret = ""
	_, err = MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 1})
	require.Error(t, err)
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: 1})
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "other"
	_, err = ParseAccessToken(other, token)
	require.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: 1, JTI: "old"})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expired"))

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "old", claims.ID)
}

func TestVerificationTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintVerificationToken(cfg, time.Now(), 9, time.Hour)
	require.NoError(t, err)

	claims, err := ParseVerificationToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestVerificationTokenRejectsAccessTokens(t *testing.T) {
	cfg := testJWTConfig()
	access, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: 3})
	require.NoError(t, err)

	_, err = ParseVerificationToken(cfg, access)
	require.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestVerificationTokenExpires(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintVerificationToken(cfg, time.Now().Add(-2*time.Hour), 9, time.Hour)
	require.NoError(t, err)

	_, err = ParseVerificationToken(cfg, token)
	require.Error(t, err)
}

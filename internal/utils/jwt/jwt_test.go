package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyToken(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Empty(t, claims.Purpose)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "secret", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "secret", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	_, err := VerifyToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGeneratePurposeToken(t *testing.T) {
	userID := uuid.New()

	token, err := GeneratePurposeToken(userID, "password-reset", "secret", 15*time.Minute)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "password-reset", claims.Purpose)
}

func TestGenerateTokenPair(t *testing.T) {
	userID := uuid.New()

	pair, err := GenerateTokenPair(userID, "access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, pair)

	accessClaims, err := VerifyToken(pair.AccessToken, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, accessClaims.UserID)

	refreshClaims, err := VerifyToken(pair.RefreshToken, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, refreshClaims.UserID)

	// Tokens are signed with different secrets and must not be interchangeable.
	_, err = VerifyToken(pair.AccessToken, "refresh-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeWithoutVerify(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, "secret", -time.Hour)
	require.NoError(t, err)

	// Expired tokens still decode; refresh flows need the user ID.
	claims, err := DecodeWithoutVerify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = DecodeWithoutVerify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateBearerToken_Valid(t *testing.T) {
	secret := "shared-secret"
	token := signToken(t, secret, &Claims{
		Subject: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ValidateBearerToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestValidateBearerToken_WrongSecret(t *testing.T) {
	token := signToken(t, "secret-a", &Claims{Subject: "alice"})
	_, err := ValidateBearerToken("secret-b", token)
	assert.Error(t, err)
}

func TestValidateBearerToken_Expired(t *testing.T) {
	secret := "shared-secret"
	token := signToken(t, secret, &Claims{
		Subject: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := ValidateBearerToken(secret, token)
	assert.Error(t, err)
}

func TestValidateBearerToken_EmptySecretDisabled(t *testing.T) {
	_, err := ValidateBearerToken("", "whatever")
	assert.Error(t, err)
}

func TestValidateBearerToken_RejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Subject: "alice"})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateBearerToken("shared-secret", signed)
	assert.Error(t, err)
}

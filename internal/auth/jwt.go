// Package auth verifies the bearer tokens the API server's middleware
// accepts. It is verification-only: this service never issues tokens
// itself, it authenticates callers who already hold one signed with the
// shared server.auth_token secret.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the minimal claim set a caller's bearer token must carry.
type Claims struct {
	jwt.RegisteredClaims
	Subject string `json:"sub"`
}

// ValidateBearerToken verifies tokenString was signed with secret using
// HMAC and has not expired. secret is server.auth_token (§6.4); an empty
// secret means auth is disabled and this function is never called.
func ValidateBearerToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: server.auth_token is not configured")
	}

	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: invalid bearer token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("auth: invalid bearer token")
	}
	return claims, nil
}

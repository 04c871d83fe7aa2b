package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestJWTSecret signs tokens minted by MintToken.
const TestJWTSecret = "test-secret"

// MintToken signs an HS256 access token for userID the way the identity
// service does. A negative ttl yields an expired token.
func MintToken(t *testing.T, secret, issuer, userID string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        userID,
		"token_type": "access",
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
	if issuer != "" {
		claims["iss"] = issuer
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/uuid"
)

// UserIDKey is the Gin context key holding the authenticated user's ID.
const UserIDKey = "userID"

// JWTClaims represents the claims of an access token issued by the identity
// service. The subject is the user's UUID.
type JWTClaims struct {
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and sets the user ID in the
// context. Tokens are only verified here, never issued. An empty issuer
// accepts tokens from any issuer.
func AuthMiddleware(secret, issuer string) gin.HandlerFunc {
	key := []byte(secret)
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		// Check if the header is in the correct format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims := &JWTClaims{}
		token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		// Reject refresh tokens used as access tokens
		if claims.TokenType == "refresh" || !uuid.IsValid(claims.Subject) {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// abortUnauthorized stops the chain and leaves the error for ErrorHandler.
func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperrors.WithMessage(apperrors.ErrUnauthorized, message))
	c.Abort()
}

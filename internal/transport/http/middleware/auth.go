package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/storefront-insights/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const errUnauthorized = "Unauthorized"

// Context keys set by Auth.
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// Auth validates a Bearer JWT and sets "userID" and "username" in the gin context.
// Tokens without an exp claim are rejected.
func Auth(jwtKey []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithExpirationRequired())

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c)
			return
		}

		rawToken := strings.TrimPrefix(header, "Bearer ")

		token, err := parser.Parse(rawToken, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: unexpected signing method %v", domain.ErrTokenInvalid, t.Header["alg"])
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c)
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, userID)
		if username, ok := claims["username"].(string); ok {
			c.Set(UsernameKey, username)
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errUnauthorized})
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"CanteenFeedback/internal/auth"
)

// TokenCookie carries the admin token for browser sessions.
const TokenCookie = "admin_token"

// AuthMiddleware accepts a Bearer header or the admin cookie. With
// allowQueryToken set it also accepts a token query parameter, for websocket
// clients that cannot set headers. A nil issuer leaves the routes open.
func AuthMiddleware(issuer *auth.TokenIssuer, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		tokenString, ok := tokenFromRequest(c, allowQueryToken)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}

		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("username", claims.Username)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, allowQuery bool) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", false
		}
		return strings.TrimPrefix(authHeader, "Bearer "), true
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	if !allowQuery {
		return "", false
	}
	if q := c.Query("token"); q != "" {
		return q, true
	}
	return "", false
}

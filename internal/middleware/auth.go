package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const (
	ContextUserID      = "userID"
	ContextAccessLevel = "accessLevel"
)

// AuthMiddleware accepts HS256 bearer tokens and puts the sub claim in the
// context as the actor id. exp is checked against clock, the same clock that
// signs tokens at login; nil means wall time.
func AuthMiddleware(secret string, clock timezone.Clock) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if clock != nil {
		opts = append(opts, jwt.WithTimeFunc(clock.Now))
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_authorization_header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		}, opts...)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_claims"})
			return
		}

		userID, ok := claims["sub"].(float64)
		if !ok || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_payload"})
			return
		}
		level, _ := claims["access_level"].(string)

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextAccessLevel, level)

		c.Next()
	}
}

// RequireAccess lets through only the listed access levels.
func RequireAccess(levels ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		level := c.GetString(ContextAccessLevel)
		for _, l := range levels {
			if l == level {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error_code": "forbidden"})
	}
}

// ActorID returns the authenticated user id, or 0 outside AuthMiddleware.
func ActorID(c *gin.Context) uint {
	id, _ := c.Get(ContextUserID)
	v, _ := id.(uint)
	return v
}

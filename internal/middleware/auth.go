package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"risk-register-service/internal/workflow"
)

const identityKey = "workflow_identity"

// JWTAuth validates the bearer token and stores the caller's identity in the
// request context. Tokens carry two identity claims because role assignments
// may be keyed by either the numeric user id or the NIK employee number.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		ident := workflow.Identity{
			UserID:      claimInt64(claims, "user_id"),
			NIK:         claimString(claims, "nik"),
			DisplayName: claimString(claims, "name"),
			SessionID:   claimString(claims, "session_id"),
		}
		if ident.UserID == 0 && ident.NIK == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token carries no identity"})
			c.Abort()
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// IdentityFrom returns the authenticated identity stored by JWTAuth. The
// second return is false on routes that skipped the middleware.
func IdentityFrom(c *gin.Context) (workflow.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return workflow.Identity{}, false
	}
	ident, ok := val.(workflow.Identity)
	return ident, ok
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// claimInt64 tolerates both numeric and string encodings of the user id,
// since upstream token issuers have emitted both.
func claimInt64(claims jwt.MapClaims, key string) int64 {
	switch v := claims[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"teakspice-storefront/internal/models"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"
)

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Required aborts with 401 unless the request carries a valid bearer token.
func (t *Tokens) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearer(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := t.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// Optional attaches the caller's identity when a valid token is present and
// lets anonymous requests through.
func (t *Tokens) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearer(c); tokenStr != "" {
			if claims, err := t.Parse(tokenStr); err == nil {
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxRole, claims.Role)
			}
		}
		c.Next()
	}
}

// AdminOnly must run after Required.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == models.RoleAdmin
}

// CanAccess reports whether the caller is userID or an admin.
func CanAccess(c *gin.Context, userID string) bool {
	return IsAdmin(c) || (userID != "" && UserID(c) == userID)
}

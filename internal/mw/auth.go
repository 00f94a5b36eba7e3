package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visitor-registry-backend/internal/auth"
)

// AdminIDKey is the gin context key holding the authenticated admin's id.
const AdminIDKey = "adminID"

// RequireAdmin gates a route group behind a valid admin session cookie.
func RequireAdmin(sessions *auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, err := sessions.Validate(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(AdminIDKey, adminID)
		c.Next()
	}
}

// AdminID returns the authenticated admin id from the request context.
func AdminID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(AdminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

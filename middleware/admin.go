package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly guards moderation routes. It relies on JWTAuth having run
// first and placed the admin claim in the context.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth: oturum yoksa 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":      "Devam etmek için giriş yapın.",
			"request_id": GetRequestID(c),
		})
	}
}

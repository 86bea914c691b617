package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin: oturum yoksa 401, admin değilse 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "Devam etmek için giriş yapın.",
				"request_id": GetRequestID(c),
			})
			return
		}
		if u.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "Bu işlem için yetkiniz yok (admin gerekli).",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/ryanadhitama/dinein-app/utils"
)

// WebSocketAuthMiddleware mengambil token dari query string (browser tidak
// bisa set header di koneksi ws) dan menaruh role di context.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

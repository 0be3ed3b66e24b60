package protocol

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsMiddleware applies the permissive CORS headers §6 requires on
// every response and short-circuits OPTIONS preflight with an empty
// 200 OK.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
)

// abort writes the API error envelope and stops the chain.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"message": message, "code": code}})
}

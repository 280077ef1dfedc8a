package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

// TokenParser resolves an access token to a user id.
type TokenParser interface {
	ParseAccess(token string) (int64, error)
}

// JWT requires "Authorization: Bearer <access token>" and stores the user id
// in the context.
func JWT(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		userID, err := tokens.ParseAccess(strings.TrimSpace(token))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"finbro-chat/internal/transport/http/response"
)

// UserIDHeader carries the persistence identity, as sent by the chat widget.
const UserIDHeader = "X-User-Id"

// RequireUserID gates history endpoints on the X-User-Id header.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromHeader(c)
		if !ok {
			response.Error(c, 401, response.CodeUnauthorized, "User ID required")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// UserIDFromHeader parses the optional identity header without enforcing it.
func UserIDFromHeader(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

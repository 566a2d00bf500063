package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/api"
	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/server/auth"
)

const userIDKey = "userID"

// UserIDFromContext returns the authenticated user id installed by Auth.
func UserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Auth validates the bearer token and stores the user id on the request
// context. Requests without a valid token are rejected with 401.
func Auth(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader(common.AuthorizationHeaderName))
		if !strings.HasPrefix(h, common.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimSpace(h[len(common.BearerPrefix):]), secretKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

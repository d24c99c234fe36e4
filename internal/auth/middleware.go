package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KevinKickass/OpenCameraCore/internal/types"
)

// Middleware rejects requests without a token matching hash. Browsers cannot
// set headers on a websocket upgrade, so a "token" query parameter is
// accepted as well.
func Middleware(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					types.NewErrorResponse("AUTH_401", "Invalid authorization header format", nil))
				return
			}
			token = parts[1]
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse("AUTH_401", "Missing authorization header", nil))
			return
		}

		if !Verify(token, hash) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				types.NewErrorResponse("AUTH_401", "Invalid token", nil))
			return
		}

		c.Next()
	}
}

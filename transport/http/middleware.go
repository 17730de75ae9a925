package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuslink/warden/service"
)

// contextUserKey is where the auth middleware stores the resolved user.
const contextUserKey = "authUser"

// AuthMiddleware creates middleware that validates bearer session tokens.
// Validation is signature and expiry only; there is no store lookup for the
// token itself.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		token := auth[7:]

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(contextUserKey, user)

		c.Next()
	}
}

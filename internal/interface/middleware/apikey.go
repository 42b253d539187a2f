package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profilehub/profilehub/pkg/response"
)

// APIKey requires every request to carry the project's anonymous key in the
// "apikey" header. This gates the whole API surface independently of user
// authentication.
func APIKey(anonKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("apikey")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(anonKey)) != 1 {
			response.Error[any](c, http.StatusUnauthorized, "missing or invalid api key", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

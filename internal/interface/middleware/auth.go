package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/profilehub/profilehub/pkg/helpers"
	"github.com/profilehub/profilehub/pkg/response"
)

// Auth validates the access-token cookie and ensures the session record it
// points at still exists in Redis. On success it sets userID, userEmail,
// sessionID, and accessToken in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		key := "auth:session:" + claims.SessionID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		c.Set("userID", data["user_id"])
		c.Set("userEmail", data["email"])
		c.Set("sessionID", claims.SessionID)
		c.Set("accessToken", token)
		c.Next()
	}
}

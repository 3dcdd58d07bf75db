package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/database"
	"github.com/mahendra/quickchat/pkg/auth"
)

const UserKey = "authUser"

// Auth validates the token header, rejects blacklisted tokens and loads the
// caller into the request context. redisClient may be nil, in which case the
// blacklist check is skipped.
func Auth(jwtManager *auth.JWTManager, redisClient *redis.Client, db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.Request)
		if err != nil {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		if redisClient != nil {
			exists, err := redisClient.Exists(context.Background(), "blacklist:"+token).Result()
			if err != nil || exists > 0 {
				abortUnauthorized(c, "Not authenticated")
				return
			}
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		user, err := db.GetUser(userID)
		if err != nil {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

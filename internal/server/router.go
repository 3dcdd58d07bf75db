package server

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/mahendra/quickchat/internal/database"
	"github.com/mahendra/quickchat/internal/handlers"
	"github.com/mahendra/quickchat/internal/middleware"
	"github.com/mahendra/quickchat/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	authH *handlers.AuthHandler,
	msgH *handlers.MessageHandler,
	wsH *handlers.WebSocketHandler,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	db *database.Database,
	uploadDir string,
) {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", auth.TokenHeader},
		AllowCredentials: true,
	}))
	r.Use(middleware.BodyLimit(middleware.MaxBodyBytes))

	authMW := middleware.Auth(jwtMgr, rdb, db)

	r.GET("/api/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server is live"})
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", authH.Signup)
		authGroup.POST("/login", authH.Login)
		authGroup.GET("/check", authMW, authH.Check)
		authGroup.PUT("/update-profile", authMW, authH.UpdateProfile)
		authGroup.POST("/logout", authMW, authH.Logout)
	}

	messages := r.Group("/api/messages", authMW)
	{
		messages.GET("/users", msgH.GetUsersForSidebar)
		messages.GET("/:id", msgH.GetMessages)
		messages.PUT("/mark/:id", msgH.MarkSeen)
		messages.POST("/send/:id", msgH.SendMessage)
	}

	// Live channel
	r.GET("/ws", wsH.HandleWebSocket)

	r.Static("/uploads", uploadDir)
}

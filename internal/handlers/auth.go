package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mahendra/quickchat/internal/database"
	"github.com/mahendra/quickchat/internal/handlers/dto"
	"github.com/mahendra/quickchat/internal/media"
	"github.com/mahendra/quickchat/internal/middleware"
	"github.com/mahendra/quickchat/internal/models"
	"github.com/mahendra/quickchat/pkg/auth"
)

type AuthHandler struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	redis      *redis.Client
	media      media.Store
}

func NewAuthHandler(db *database.Database, jwtMgr *auth.JWTManager, rdb *redis.Client, mediaStore media.Store) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtMgr, redis: rdb, media: mediaStore}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Bio == "" {
		failMessage(c, "Missing details")
		return
	}

	if _, err := h.db.FindUserByEmail(req.Email); err == nil {
		failMessage(c, "Account already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		slog.Error("signup: email lookup failed", "err", err)
		failStore(c, "Failed to create account")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		failStore(c, "Failed to create account")
		return
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Bio:          req.Bio,
		CreatedAt:    time.Now(),
	}

	if err := h.db.CreateUser(user); err != nil {
		slog.Error("signup: create user failed", "err", err)
		failStore(c, "Failed to create account")
		return
	}

	token, err := h.jwtManager.Generate(user.ID.String())
	if err != nil {
		failStore(c, "Failed to create account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Account created successfully",
		"userData": user,
		"token":    token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.db.FindUserByEmail(req.Email)
	if err != nil {
		failMessage(c, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		failMessage(c, "Invalid credentials")
		return
	}

	token, err := h.jwtManager.Generate(user.ID.String())
	if err != nil {
		failStore(c, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Login successful",
		"userData": user,
		"token":    token,
	})
}

// Check returns the authenticated caller, letting the client restore its
// session from a stored token.
func (h *AuthHandler) Check(c *gin.Context) {
	user := c.MustGet(middleware.UserKey).(*models.User)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := c.MustGet(middleware.UserKey).(*models.User)

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.ProfilePic != "" {
		url, err := h.media.Upload(c.Request.Context(), req.ProfilePic)
		if err != nil {
			slog.Error("update-profile: upload failed", "user", user.ID, "err", err)
			failMessage(c, "Profile picture upload failed")
			return
		}
		user.ProfilePic = url
	}

	user.FullName = req.FullName
	user.Bio = req.Bio

	if err := h.db.UpdateUser(user); err != nil {
		slog.Error("update-profile: save failed", "user", user.ID, "err", err)
		failStore(c, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// Logout blacklists the token in Redis until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken, err := auth.ExtractToken(c.Request)
	if err != nil {
		failMessage(c, "Missing token")
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		failMessage(c, "Invalid token")
		return
	}

	if h.redis != nil {
		ttl := time.Until(exp)
		if ttl > 0 {
			h.redis.Set(context.Background(), "blacklist:"+rawToken, 1, ttl)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

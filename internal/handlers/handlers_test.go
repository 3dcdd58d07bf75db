package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mahendra/quickchat/internal/database"
	"github.com/mahendra/quickchat/internal/handlers"
	"github.com/mahendra/quickchat/internal/middleware"
	"github.com/mahendra/quickchat/internal/models"
	"github.com/mahendra/quickchat/pkg/auth"
)

type fakeRelay struct {
	mu        sync.Mutex
	online    bool
	delivered []*models.Message
}

func (r *fakeRelay) Deliver(message *models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, message)
	return r.online
}

func (r *fakeRelay) deliveries() []*models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Message(nil), r.delivered...)
}

type fakeMedia struct{}

func (fakeMedia) Upload(_ context.Context, dataURI string) (string, error) {
	if strings.HasPrefix(dataURI, "data:") {
		return "/uploads/stored.png", nil
	}
	return dataURI, nil
}

type testEnv struct {
	router *gin.Engine
	db     *database.Database
	relay  *fakeRelay
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := database.NewDatabase(gdb)
	require.NoError(t, db.Migrate())

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	relay := &fakeRelay{}

	authH := handlers.NewAuthHandler(db, jwtMgr, nil, fakeMedia{})
	msgH := handlers.NewMessageHandler(db, relay, fakeMedia{})

	router := gin.New()
	router.Use(middleware.BodyLimit(middleware.MaxBodyBytes))
	authMW := middleware.Auth(jwtMgr, nil, db)

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/signup", authH.Signup)
		authGroup.POST("/login", authH.Login)
		authGroup.GET("/check", authMW, authH.Check)
		authGroup.PUT("/update-profile", authMW, authH.UpdateProfile)
		authGroup.POST("/logout", authMW, authH.Logout)
	}

	messages := router.Group("/api/messages", authMW)
	{
		messages.GET("/users", msgH.GetUsersForSidebar)
		messages.GET("/:id", msgH.GetMessages)
		messages.PUT("/mark/:id", msgH.MarkSeen)
		messages.POST("/send/:id", msgH.SendMessage)
	}

	return &testEnv{router: router, db: db, relay: relay}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

// signup creates an account and returns its token and user id.
func (e *testEnv) signup(t *testing.T, name string) (token, userID string) {
	t.Helper()

	rec, payload := e.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullName": name,
		"email":    name + "@example.com",
		"password": "secret123",
		"bio":      "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, payload["success"], "signup failed: %v", payload["message"])

	userData := payload["userData"].(map[string]any)
	return payload["token"].(string), userData["id"].(string)
}

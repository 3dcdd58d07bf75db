// Package chatclient is the Go counterpart of the web client: a REST client,
// the chat state cache it feeds, and the live-channel listener that keeps the
// cache current.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/handlers/dto"
	"github.com/mahendra/quickchat/internal/models"
	"github.com/mahendra/quickchat/pkg/auth"
)

// APIError is a success:false envelope or a transport-level failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// API talks to the chat server, echoing the session token on every request.
type API struct {
	baseURL string
	hc      *http.Client

	mu    sync.RWMutex
	token string
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      http.DefaultClient,
	}
}

func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *API) SetToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type authResponse struct {
	envelope
	Token    string       `json:"token"`
	UserData *models.User `json:"userData"`
}

type checkResponse struct {
	envelope
	User *models.User `json:"user"`
}

type sidebarResponse struct {
	envelope
	Users          []models.User    `json:"users"`
	UnseenMessages map[string]int64 `json:"unseenMessages"`
}

type messagesResponse struct {
	envelope
	Messages []models.Message `json:"messages"`
}

type sendResponse struct {
	envelope
	NewMessage *models.Message `json:"newMessage"`
}

// Signup creates an account and stores the issued token for later calls.
func (a *API) Signup(ctx context.Context, fullName, email, password, bio string) (*models.User, error) {
	req := dto.SignupRequest{FullName: fullName, Email: email, Password: password, Bio: bio}
	var resp authResponse
	if err := a.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	a.SetToken(resp.Token)
	return resp.UserData, nil
}

// Login authenticates and stores the issued token for later calls.
func (a *API) Login(ctx context.Context, email, password string) (*models.User, error) {
	req := dto.LoginRequest{Email: email, Password: password}
	var resp authResponse
	if err := a.do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	a.SetToken(resp.Token)
	return resp.UserData, nil
}

func (a *API) Check(ctx context.Context) (*models.User, error) {
	var resp checkResponse
	if err := a.do(ctx, http.MethodGet, "/api/auth/check", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (a *API) UpdateProfile(ctx context.Context, fullName, bio, profilePic string) (*models.User, error) {
	req := dto.UpdateProfileRequest{FullName: fullName, Bio: bio, ProfilePic: profilePic}
	var resp checkResponse
	if err := a.do(ctx, http.MethodPut, "/api/auth/update-profile", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// SidebarUsers returns all conversation partners and the unseen-message count
// per sender.
func (a *API) SidebarUsers(ctx context.Context) ([]models.User, map[uuid.UUID]int64, error) {
	var resp sidebarResponse
	if err := a.do(ctx, http.MethodGet, "/api/messages/users", nil, &resp); err != nil {
		return nil, nil, err
	}

	unseen := make(map[uuid.UUID]int64, len(resp.UnseenMessages))
	for key, n := range resp.UnseenMessages {
		senderID, err := uuid.Parse(key)
		if err != nil {
			continue
		}
		unseen[senderID] = n
	}
	return resp.Users, unseen, nil
}

// Messages fetches the conversation with the peer. The server bulk-marks the
// peer's messages seen as a side effect.
func (a *API) Messages(ctx context.Context, peerID uuid.UUID) ([]models.Message, error) {
	var resp messagesResponse
	if err := a.do(ctx, http.MethodGet, "/api/messages/"+peerID.String(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (a *API) MarkSeen(ctx context.Context, messageID uuid.UUID) error {
	var resp envelope
	return a.do(ctx, http.MethodPut, "/api/messages/mark/"+messageID.String(), nil, &resp)
}

// Send posts a new message; the server's persisted copy comes back with its
// assigned id and timestamp.
func (a *API) Send(ctx context.Context, receiverID uuid.UUID, text, image string) (*models.Message, error) {
	req := dto.SendMessageRequest{Text: text, Image: image}
	var resp sendResponse
	if err := a.do(ctx, http.MethodPost, "/api/messages/send/"+receiverID.String(), req, &resp); err != nil {
		return nil, err
	}
	return resp.NewMessage, nil
}

// do issues one request and decodes the envelope. A success:false envelope is
// returned as an *APIError even on HTTP 200.
func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := a.Token(); token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	raw := new(bytes.Buffer)
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		return err
	}
	if err := json.Unmarshal(raw.Bytes(), &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response"}
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out != nil {
		return json.Unmarshal(raw.Bytes(), out)
	}
	return nil
}

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/database"
	"github.com/mahendra/quickchat/internal/handlers/dto"
	"github.com/mahendra/quickchat/internal/media"
	"github.com/mahendra/quickchat/internal/middleware"
	"github.com/mahendra/quickchat/internal/models"
)

// MessageRelay pushes a freshly persisted message to the receiver's live
// connection, if one exists. Injected so the REST layer never touches the hub
// directly.
type MessageRelay interface {
	Deliver(message *models.Message) bool
}

type MessageHandler struct {
	db    *database.Database
	relay MessageRelay
	media media.Store
}

func NewMessageHandler(db *database.Database, relay MessageRelay, mediaStore media.Store) *MessageHandler {
	return &MessageHandler{db: db, relay: relay, media: mediaStore}
}

// GetUsersForSidebar lists every other user plus the caller's unseen-message
// counts keyed by sender id.
func (h *MessageHandler) GetUsersForSidebar(c *gin.Context) {
	user := c.MustGet(middleware.UserKey).(*models.User)

	users, err := h.db.ListOtherUsers(user.ID)
	if err != nil {
		slog.Error("sidebar: list users failed", "err", err)
		failStore(c, "Failed to fetch users")
		return
	}

	counts, err := h.db.CountUnseenBySender(user.ID)
	if err != nil {
		slog.Error("sidebar: unseen counts failed", "err", err)
		failStore(c, "Failed to fetch users")
		return
	}

	unseen := make(map[string]int64, len(counts))
	for senderID, n := range counts {
		unseen[senderID.String()] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"users":          users,
		"unseenMessages": unseen,
	})
}

// GetMessages returns the full conversation with the peer, oldest first, and
// marks every peer->caller message seen as a side effect. The returned copies
// still carry their pre-call seen flags; a repeat call marks nothing new.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	user := c.MustGet(middleware.UserKey).(*models.User)

	peerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		failMessage(c, "Invalid user id")
		return
	}

	messages, err := h.db.GetConversation(user.ID, peerID)
	if err != nil {
		slog.Error("messages: conversation fetch failed", "err", err)
		failStore(c, "Failed to fetch messages")
		return
	}

	if err := h.db.MarkConversationSeen(peerID, user.ID); err != nil {
		slog.Error("messages: bulk seen-marking failed", "err", err)
		failStore(c, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"messages": messages,
	})
}

// MarkSeen flips the seen flag on one message. Unknown ids succeed silently
// so a mark racing a concurrent send never surfaces an error.
func (h *MessageHandler) MarkSeen(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		failMessage(c, "Invalid message id")
		return
	}

	if err := h.db.MarkMessageSeen(messageID); err != nil {
		slog.Error("mark: seen update failed", "message", messageID, "err", err)
		failStore(c, "Failed to mark message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendMessage persists the message and best-effort pushes it to the
// receiver's live connection. The message is durable before delivery is
// attempted, so a missed push only delays the receiver until the next fetch.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	user := c.MustGet(middleware.UserKey).(*models.User)

	receiverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		failMessage(c, "Invalid user id")
		return
	}

	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Text == "" && req.Image == "" {
		failMessage(c, "Message must contain text or an image")
		return
	}

	imageURL := ""
	if req.Image != "" {
		imageURL, err = h.media.Upload(c.Request.Context(), req.Image)
		if err != nil {
			slog.Error("send: image upload failed", "user", user.ID, "err", err)
			failMessage(c, "Image upload failed")
			return
		}
	}

	message := &models.Message{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      imageURL,
		Seen:       false,
		CreatedAt:  time.Now(),
	}

	if err := h.db.SaveMessage(message); err != nil {
		slog.Error("send: save failed", "user", user.ID, "err", err)
		failStore(c, "Failed to send message")
		return
	}

	if pushed := h.relay.Deliver(message); pushed {
		slog.Debug("send: pushed to live connection", "receiver", receiverID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"newMessage": message,
	})
}

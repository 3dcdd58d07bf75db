package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/models"
	"github.com/mahendra/quickchat/internal/presence"
)

// Hub owns the live connections and the presence registry. Every register and
// unregister commits the registry mutation first, then broadcasts the updated
// online set to all connections. Delivery of new messages is best-effort:
// when the receiver has no live connection the message simply stays in
// storage.
type Hub struct {
	registry *presence.Registry

	// connected clients by connection id
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(registry *presence.Registry) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:   registry,
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		h.registry.Unregister(client.ID)
		close(client.Send)
		client.Conn.Close()
	}
	h.clients = make(map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Online returns the user ids currently holding a live connection.
func (h *Hub) Online() []uuid.UUID {
	return h.registry.Online()
}

// Deliver pushes the message to the receiver's current connection. Reports
// whether a push happened; there is no retry or acknowledgement.
func (h *Hub) Deliver(message *models.Message) bool {
	payload, err := MarshalEvent(EventNewMessage, message)
	if err != nil {
		slog.Error("marshal newMessage event", "err", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	connID, ok := h.registry.Lookup(message.ReceiverID)
	if !ok {
		return false
	}
	client, ok := h.clients[connID]
	if !ok {
		return false
	}

	select {
	case client.Send <- payload:
		return true
	default:
		slog.Warn("client send queue full, dropping push", "user", client.UserID)
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.registry.Register(client.UserID, client.ID)
	h.mu.Unlock()

	slog.Info("client connected", "user", client.UserID, "conn", client.ID)

	h.broadcastOnline()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client.ID]
	if known {
		delete(h.clients, client.ID)
		h.registry.Unregister(client.ID)
		close(client.Send)
	}
	h.mu.Unlock()

	if !known {
		return
	}

	slog.Info("client disconnected", "user", client.UserID, "conn", client.ID)

	h.broadcastOnline()
}

// broadcastOnline sends the full online-user set to every connection. Issued
// after the registry mutation is committed so no client sees a stale set.
func (h *Hub) broadcastOnline() {
	payload, err := MarshalEvent(EventOnlineUsers, h.registry.Online())
	if err != nil {
		slog.Error("marshal getOnlineUsers event", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

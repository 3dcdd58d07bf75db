package chatclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/models"
)

var ErrNoConversation = errors.New("no conversation selected")

// ConversationStatus tracks a conversation through not loaded -> loading ->
// loaded.
type ConversationStatus int

const (
	ConversationNotLoaded ConversationStatus = iota
	ConversationLoading
	ConversationLoaded
)

// ChatAPI is the slice of the server API the state machine needs.
type ChatAPI interface {
	SidebarUsers(ctx context.Context) ([]models.User, map[uuid.UUID]int64, error)
	Messages(ctx context.Context, peerID uuid.UUID) ([]models.Message, error)
	MarkSeen(ctx context.Context, messageID uuid.UUID) error
	Send(ctx context.Context, receiverID uuid.UUID, text, image string) (*models.Message, error)
}

// State caches the conversation list, the open conversation's history, the
// unseen counts and the online set. Incoming pushes are routed here: a
// message from the open peer is appended and marked seen, anything else bumps
// that sender's unseen count. The persisted store stays the source of truth;
// this is a read-side cache.
type State struct {
	api ChatAPI

	mu       sync.RWMutex
	users    []models.User
	selected uuid.UUID
	status   map[uuid.UUID]ConversationStatus
	messages []models.Message
	unseen   map[uuid.UUID]int64
	online   map[uuid.UUID]bool
}

func NewState(api ChatAPI) *State {
	return &State{
		api:    api,
		status: make(map[uuid.UUID]ConversationStatus),
		unseen: make(map[uuid.UUID]int64),
		online: make(map[uuid.UUID]bool),
	}
}

// LoadUsers refreshes the sidebar: conversation partners and unseen counts.
func (s *State) LoadUsers(ctx context.Context) error {
	users, unseen, err := s.api.SidebarUsers(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.users = users
	s.unseen = unseen
	s.mu.Unlock()
	return nil
}

// SelectConversation opens the conversation with the peer: resets its unseen
// count locally (the server resets authoritatively while serving the fetch),
// fetches the history and transitions it to loaded.
func (s *State) SelectConversation(ctx context.Context, peerID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	s.selected = peerID
	s.status[peerID] = ConversationLoading
	delete(s.unseen, peerID)
	s.mu.Unlock()

	messages, err := s.api.Messages(ctx, peerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status[peerID] = ConversationNotLoaded
		return nil, err
	}
	if s.selected == peerID {
		s.messages = messages
		s.status[peerID] = ConversationLoaded
	}
	return messages, nil
}

// ClearSelection closes the open conversation; subsequent pushes from its
// peer count as unseen again.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != uuid.Nil {
		s.status[s.selected] = ConversationNotLoaded
	}
	s.selected = uuid.Nil
	s.messages = nil
}

// Send delivers a message to the open peer and appends the server's persisted
// copy. There is no optimistic echo; the list grows only once the server
// answers.
func (s *State) Send(ctx context.Context, text, image string) (*models.Message, error) {
	s.mu.RLock()
	peerID := s.selected
	s.mu.RUnlock()

	if peerID == uuid.Nil {
		return nil, ErrNoConversation
	}

	message, err := s.api.Send(ctx, peerID, text, image)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.selected == peerID {
		s.messages = append(s.messages, *message)
	}
	s.mu.Unlock()
	return message, nil
}

// HandleNewMessage routes an incoming push: append and mark seen when its
// sender is the open peer, otherwise bump that sender's unseen count.
func (s *State) HandleNewMessage(ctx context.Context, message models.Message) {
	s.mu.Lock()
	fromOpenPeer := s.selected == message.SenderID && s.status[s.selected] == ConversationLoaded
	if fromOpenPeer {
		message.Seen = true
		s.messages = append(s.messages, message)
	} else {
		s.unseen[message.SenderID]++
	}
	s.mu.Unlock()

	if fromOpenPeer {
		if err := s.api.MarkSeen(ctx, message.ID); err != nil {
			slog.Debug("mark seen failed", "message", message.ID, "err", err)
		}
	}
}

// SetOnline replaces the online set from a presence broadcast.
func (s *State) SetOnline(userIDs []uuid.UUID) {
	online := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		online[id] = true
	}

	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
}

func (s *State) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, len(s.users))
	copy(users, s.users)
	return users
}

func (s *State) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]models.Message, len(s.messages))
	copy(messages, s.messages)
	return messages
}

func (s *State) Selected() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *State) Status(peerID uuid.UUID) ConversationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[peerID]
}

// Unseen returns the badge count for one peer.
func (s *State) Unseen(peerID uuid.UUID) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unseen[peerID]
}

func (s *State) UnseenCounts() map[uuid.UUID]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[uuid.UUID]int64, len(s.unseen))
	for id, n := range s.unseen {
		counts[id] = n
	}
	return counts
}

func (s *State) IsOnline(userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online[userID]
}

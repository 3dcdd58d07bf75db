package chatclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahendra/quickchat/internal/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	users    []models.User
	unseen   map[uuid.UUID]int64
	history  map[uuid.UUID][]models.Message
	marked   []uuid.UUID
	sendErr  error
	fetchErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		unseen:  make(map[uuid.UUID]int64),
		history: make(map[uuid.UUID][]models.Message),
	}
}

func (f *fakeAPI) SidebarUsers(context.Context) ([]models.User, map[uuid.UUID]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unseen := make(map[uuid.UUID]int64, len(f.unseen))
	for id, n := range f.unseen {
		unseen[id] = n
	}
	return f.users, unseen, nil
}

func (f *fakeAPI) Messages(_ context.Context, peerID uuid.UUID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.history[peerID], nil
}

func (f *fakeAPI) MarkSeen(_ context.Context, messageID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, messageID)
	return nil
}

func (f *fakeAPI) Send(_ context.Context, receiverID uuid.UUID, text, image string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	message := models.Message{
		ID:         uuid.New(),
		ReceiverID: receiverID,
		Text:       text,
		Image:      image,
		CreatedAt:  time.Now(),
	}
	f.history[receiverID] = append(f.history[receiverID], message)
	return &message, nil
}

func (f *fakeAPI) markedIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.marked...)
}

func push(sender uuid.UUID, text string) models.Message {
	return models.Message{
		ID:        uuid.New(),
		SenderID:  sender,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func TestState_LoadUsers(t *testing.T) {
	api := newFakeAPI()
	bob := uuid.New()
	api.users = []models.User{{ID: bob, FullName: "bob"}}
	api.unseen[bob] = 2

	state := NewState(api)
	require.NoError(t, state.LoadUsers(context.Background()))

	assert.Len(t, state.Users(), 1)
	assert.Equal(t, int64(2), state.Unseen(bob))
}

func TestState_SelectConversationLoadsAndResets(t *testing.T) {
	api := newFakeAPI()
	bob := uuid.New()
	api.unseen[bob] = 3
	api.history[bob] = []models.Message{push(bob, "old one"), push(bob, "old two")}

	state := NewState(api)
	require.NoError(t, state.LoadUsers(context.Background()))

	assert.Equal(t, ConversationNotLoaded, state.Status(bob))

	messages, err := state.SelectConversation(context.Background(), bob)
	require.NoError(t, err)

	assert.Len(t, messages, 2)
	assert.Equal(t, ConversationLoaded, state.Status(bob))
	assert.Equal(t, bob, state.Selected())
	assert.Zero(t, state.Unseen(bob), "opening the thread resets the badge")
}

func TestState_SelectConversationFetchFailure(t *testing.T) {
	api := newFakeAPI()
	api.fetchErr = errors.New("store unavailable")
	bob := uuid.New()

	state := NewState(api)
	_, err := state.SelectConversation(context.Background(), bob)
	require.Error(t, err)
	assert.Equal(t, ConversationNotLoaded, state.Status(bob))
}

func TestState_IncomingPushRouting(t *testing.T) {
	api := newFakeAPI()
	bob := uuid.New()
	carol := uuid.New()

	state := NewState(api)
	_, err := state.SelectConversation(context.Background(), bob)
	require.NoError(t, err)

	t.Run("from open peer appends and marks seen", func(t *testing.T) {
		incoming := push(bob, "hi")
		state.HandleNewMessage(context.Background(), incoming)

		messages := state.Messages()
		require.Len(t, messages, 1)
		assert.Equal(t, "hi", messages[0].Text)
		assert.True(t, messages[0].Seen)
		assert.Equal(t, []uuid.UUID{incoming.ID}, api.markedIDs())
		assert.Zero(t, state.Unseen(bob))
	})

	t.Run("from other peer bumps unseen count", func(t *testing.T) {
		state.HandleNewMessage(context.Background(), push(carol, "psst"))
		state.HandleNewMessage(context.Background(), push(carol, "psst again"))

		assert.Equal(t, int64(2), state.Unseen(carol))
		assert.Len(t, state.Messages(), 1, "open conversation untouched")
		assert.Len(t, api.markedIDs(), 1, "no mark-seen for background pushes")
	})

	t.Run("unseen accumulates then resets on open", func(t *testing.T) {
		_, err := state.SelectConversation(context.Background(), carol)
		require.NoError(t, err)
		assert.Zero(t, state.Unseen(carol))
	})
}

func TestState_PushWhileNothingSelectedCountsUnseen(t *testing.T) {
	api := newFakeAPI()
	bob := uuid.New()

	state := NewState(api)
	state.HandleNewMessage(context.Background(), push(bob, "hi"))

	assert.Equal(t, int64(1), state.Unseen(bob))
	assert.Empty(t, api.markedIDs())
}

func TestState_ClearSelection(t *testing.T) {
	api := newFakeAPI()
	bob := uuid.New()

	state := NewState(api)
	_, err := state.SelectConversation(context.Background(), bob)
	require.NoError(t, err)

	state.ClearSelection()

	assert.Equal(t, uuid.Nil, state.Selected())
	assert.Empty(t, state.Messages())

	// pushes from bob now count as unseen again
	state.HandleNewMessage(context.Background(), push(bob, "hi"))
	assert.Equal(t, int64(1), state.Unseen(bob))
}

func TestState_SendAppendsServerCopy(t *testing.T) {
	api := newFakeAPI()
	bob := uuid.New()

	state := NewState(api)
	_, err := state.SelectConversation(context.Background(), bob)
	require.NoError(t, err)

	message, err := state.Send(context.Background(), "hello", "")
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.NotEqual(t, uuid.Nil, message.ID, "server assigns the id")

	messages := state.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text)
}

func TestState_SendWithoutSelection(t *testing.T) {
	state := NewState(newFakeAPI())

	_, err := state.Send(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrNoConversation)
}

func TestState_SendFailureLeavesListUntouched(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("store unavailable")
	bob := uuid.New()

	state := NewState(api)
	_, err := state.SelectConversation(context.Background(), bob)
	require.NoError(t, err)

	_, err = state.Send(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Empty(t, state.Messages(), "no optimistic echo")
}

func TestState_SetOnline(t *testing.T) {
	state := NewState(newFakeAPI())
	bob := uuid.New()
	carol := uuid.New()

	state.SetOnline([]uuid.UUID{bob})
	assert.True(t, state.IsOnline(bob))
	assert.False(t, state.IsOnline(carol))

	state.SetOnline([]uuid.UUID{carol})
	assert.False(t, state.IsOnline(bob))
	assert.True(t, state.IsOnline(carol))
}

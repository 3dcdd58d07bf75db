package chatclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mahendra/quickchat/internal/models"
	"github.com/mahendra/quickchat/internal/ws"
)

// Socket is the client end of the live channel. It feeds presence broadcasts
// and message pushes into the State.
type Socket struct {
	conn  *websocket.Conn
	state *State
}

// DialSocket opens the live channel, identifying as userID via the handshake
// query parameter.
func DialSocket(ctx context.Context, baseURL string, userID uuid.UUID, state *State) (*Socket, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"userId": {userID.String()}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	return &Socket{conn: conn, state: state}, nil
}

// Listen dispatches incoming events until the connection or context ends.
func (s *Socket) Listen(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		var event ws.Event
		if err := s.conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		switch event.Event {
		case ws.EventOnlineUsers:
			var userIDs []uuid.UUID
			if err := json.Unmarshal(event.Data, &userIDs); err != nil {
				slog.Debug("bad getOnlineUsers payload", "err", err)
				continue
			}
			s.state.SetOnline(userIDs)

		case ws.EventNewMessage:
			var message models.Message
			if err := json.Unmarshal(event.Data, &message); err != nil {
				slog.Debug("bad newMessage payload", "err", err)
				continue
			}
			s.state.HandleNewMessage(ctx, message)

		default:
			slog.Debug("unknown event", "event", event.Event)
		}
	}
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

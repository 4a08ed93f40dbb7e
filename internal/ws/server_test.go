package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatroomgo/internal/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *presence.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	coord := presence.NewCoordinator(hub, presence.Options{})
	srv := NewWsServer(hub, coord, Options{})

	engine := gin.New()
	engine.GET("/ws", srv.Handle)
	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)
	return ts, coord
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, body any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Body: raw}))
}

// next reads frames until one with the wanted event arrives.
func next(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Event == event {
			return env.Body
		}
	}
}

func nextMessage(t *testing.T, conn *websocket.Conn) MessageBody {
	t.Helper()
	var m MessageBody
	require.NoError(t, json.Unmarshal(next(t, conn, EventMessage), &m))
	return m
}

func TestWsServer_JoinChatAndLeave(t *testing.T) {
	req := require.New(t)
	ts, coord := newTestServer(t)

	alice := dial(t, ts)
	welcome := nextMessage(t, alice)
	req.Equal(presence.DefaultSystemName, welcome.Name)
	req.Equal(presence.DefaultWelcomeText, welcome.Text)

	send(t, alice, EventEnterRoom, EnterRoomRequest{Name: "alice", Room: "lobby"})
	req.Equal("You have joined the lobby chat room", nextMessage(t, alice).Text)
	var users UserListBody
	req.NoError(json.Unmarshal(next(t, alice, EventUserList), &users))
	req.Len(users.Users, 1)
	var rooms RoomListBody
	req.NoError(json.Unmarshal(next(t, alice, EventRoomList), &rooms))
	req.Equal([]string{"lobby"}, rooms.Rooms)

	bob := dial(t, ts)
	nextMessage(t, bob) // welcome
	send(t, bob, EventEnterRoom, EnterRoomRequest{Name: "bob", Room: "lobby"})
	req.Equal("bob has joined the room", nextMessage(t, alice).Text)
	req.NoError(json.Unmarshal(next(t, alice, EventUserList), &users))
	req.Len(users.Users, 2)

	// Chat reaches the sender too
	send(t, bob, EventMessage, MessageRequest{Name: "bob", Text: "hello"})
	req.Equal("hello", nextMessage(t, alice).Text)
	for {
		m := nextMessage(t, bob)
		if m.Text == "hello" {
			req.Equal("bob", m.Name)
			req.NotEmpty(m.Time)
			break
		}
	}

	// Activity reaches the others only
	send(t, alice, EventActivity, ActivityRequest{Name: "alice"})
	var act ActivityBody
	req.NoError(json.Unmarshal(next(t, bob, EventActivity), &act))
	req.Equal("alice", act.Name)

	// When bob hangs up alice is told
	req.NoError(bob.Close())
	req.Equal("bob has left the room", nextMessage(t, alice).Text)
	req.Eventually(func() bool { return coord.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	req.Len(coord.Members("lobby"), 1)
}

func TestWsServer_BadFramesGetErrors(t *testing.T) {
	req := require.New(t)
	ts, coord := newTestServer(t)
	conn := dial(t, ts)
	nextMessage(t, conn)

	var body ErrorBody
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	req.NoError(json.Unmarshal(next(t, conn, EventError), &body))
	req.Equal(ErrInvalidBody.Error(), body.Error)

	send(t, conn, "shout", ActivityRequest{Name: "x"})
	req.NoError(json.Unmarshal(next(t, conn, EventError), &body))
	req.Equal(ErrUnknownEvent.Error(), body.Error)

	send(t, conn, EventEnterRoom, EnterRoomRequest{Name: "alice"})
	req.NoError(json.Unmarshal(next(t, conn, EventError), &body))
	req.Contains(body.Error, ErrInvalidBody.Error())
	req.Empty(coord.Rooms())
}

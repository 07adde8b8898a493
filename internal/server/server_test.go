package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctchen222/tictactoe-rooms/internal/api/controller"
	"ctchen222/tictactoe-rooms/internal/game"
	"ctchen222/tictactoe-rooms/internal/hub"
	"ctchen222/tictactoe-rooms/internal/registry"
	"ctchen222/tictactoe-rooms/internal/room"
	"ctchen222/tictactoe-rooms/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func startServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.NewHub(registry.New(), nil, hub.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := NewServer(h, controller.NewRoomController(h), opts)
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	// Every connection starts with the roster.
	requireNext(t, conn, proto.EventRooms)
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, raw string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

// requireNext reads frames until one with the given event arrives.
func requireNext(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", event)
		var f wireFrame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Event == event {
			return f.Payload
		}
	}
}

func requireState(t *testing.T, conn *websocket.Conn) game.State {
	t.Helper()
	var ev proto.StateEvent
	require.NoError(t, json.Unmarshal(requireNext(t, conn, proto.EventGameEvent), &ev))
	require.Equal(t, proto.GameEventState, ev.Type)
	return ev.Data
}

func requireAssignment(t *testing.T, conn *websocket.Conn) proto.PlayerAssignmentMessage {
	t.Helper()
	var msg proto.PlayerAssignmentMessage
	require.NoError(t, json.Unmarshal(requireNext(t, conn, proto.EventAssignment), &msg))
	return msg
}

// assertNoGameEvent fails if a game_event frame arrives within wait.
func assertNoGameEvent(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			require.ErrorAs(t, err, &netErr)
			require.True(t, netErr.Timeout())
			return
		}
		var f wireFrame
		require.NoError(t, json.Unmarshal(data, &f))
		assert.NotEqual(t, proto.EventGameEvent, f.Event, "unexpected frame %s", data)
	}
}

func join(roomID string) string {
	return fmt.Sprintf(`{"event":"join_room","payload":%q}`, roomID)
}

func move(index int) string {
	return fmt.Sprintf(`{"event":"game_event","payload":{"type":"move","data":{"index":%d}}}`, index)
}

func getRooms(t *testing.T, ts *httptest.Server) []room.Summary {
	t.Helper()
	resp, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Extras struct {
			Rooms []room.Summary `json:"rooms"`
		} `json:"extras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Extras.Rooms
}

func TestServer_TwoPlayerGame(t *testing.T) {
	ts := startServer(t, Options{SendBufferSize: 32, MaxMessageSize: 512})

	a := dial(t, ts, nil)
	sendJSON(t, a, join("r1"))
	assert.Equal(t, game.Reset(), requireState(t, a))
	assignA := requireAssignment(t, a)
	assert.Equal(t, game.PlayerX, assignA.Mark)
	assert.NotEmpty(t, assignA.PlayerID)

	b := dial(t, ts, nil)
	sendJSON(t, b, join("r1"))
	requireState(t, b)
	assignB := requireAssignment(t, b)
	assert.Equal(t, game.PlayerO, assignB.Mark)
	assert.NotEqual(t, assignA.PlayerID, assignB.PlayerID)

	sendJSON(t, a, move(4))
	for _, conn := range []*websocket.Conn{a, b} {
		state := requireState(t, conn)
		assert.Equal(t, game.PlayerX, state.Board[4])
		assert.Equal(t, game.PlayerO, state.CurrentPlayer)
	}

	// The occupied cell is dropped, the next legal move is seen right after the first.
	sendJSON(t, b, move(4))
	sendJSON(t, b, move(0))
	for _, conn := range []*websocket.Conn{a, b} {
		state := requireState(t, conn)
		assert.Equal(t, game.PlayerO, state.Board[0])
		assert.Equal(t, game.PlayerX, state.CurrentPlayer)
	}

	assert.Equal(t, []room.Summary{{ID: "r1", X: true, O: true}}, getRooms(t, ts))

	// A third player is turned away silently.
	c := dial(t, ts, nil)
	sendJSON(t, c, join("r1"))
	assertNoGameEvent(t, c, 300*time.Millisecond)

	// X leaves; O sees the seat freed in the roster.
	require.NoError(t, a.Close())
	require.Eventually(t, func() bool {
		rooms := getRooms(t, ts)
		return len(rooms) == 1 && !rooms[0].X && rooms[0].O
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, b.Close())
	require.Eventually(t, func() bool {
		return len(getRooms(t, ts)) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServer_Health(t *testing.T) {
	ts := startServer(t, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_OriginPolicy(t *testing.T) {
	ts := startServer(t, Options{AllowedOrigins: []string{"https://play.example.com"}})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, ts, http.Header{"Origin": {"HTTPS://Play.Example.com"}})
}

func TestNewOriginPolicy(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"empty list allows all", nil, "https://any.example.com", true},
		{"wildcard allows all", []string{"*"}, "https://any.example.com", true},
		{"listed origin", []string{"https://a.example.com"}, "https://a.example.com", true},
		{"unlisted origin", []string{"https://a.example.com"}, "https://b.example.com", false},
		{"no origin header", []string{"https://a.example.com"}, "", true},
		{"invalid origin header", []string{"https://a.example.com"}, "not a url", false},
		{"only invalid entries allows all", []string{"nope"}, "https://b.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := newOriginPolicy(tt.origins)
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, policy.check(req))
		})
	}
}

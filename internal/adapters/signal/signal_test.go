package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/jump/internal/app"
	"github.com/dkeye/jump/internal/app/orch"
	"github.com/dkeye/jump/internal/core"
	"github.com/dkeye/jump/internal/domain"
	"github.com/dkeye/jump/internal/protocol"
)

func newOrchestrator() *orch.Orchestrator {
	reg := app.NewRegistry(nil, nil)
	rooms := app.NewRoomRegistry(reg, clock.New(), nil)
	return &orch.Orchestrator{
		Registry: reg,
		Users:    app.NewIdentityDirectory(nil, nil),
		Rooms:    rooms,
		Relay:    app.NewSignalRelay(rooms, reg, nil),
	}
}

func serve(t *testing.T, o *orch.Orchestrator, opts Options) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ctl := NewSignalWSController(o, opts)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// next reads frames until one carries event.
func next(t *testing.T, ws *websocket.Conn, event protocol.Event) protocol.Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		var env protocol.Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Event == event {
			return env
		}
	}
}

func TestSignalConnectionGetsIdentity(t *testing.T) {
	o := newOrchestrator()
	ws := dial(t, serve(t, o, Options{}))

	env := next(t, ws, protocol.DisplayName)
	var user domain.Identity
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.DisplayName)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"event":"PING"}`)))
	next(t, ws, protocol.Pong)
}

func TestSignalBadFrameReportsError(t *testing.T) {
	ws := dial(t, serve(t, newOrchestrator(), Options{}))
	next(t, ws, protocol.DisplayName)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	env := next(t, ws, protocol.Error)
	var reply protocol.ErrorReply
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Equal(t, "INVALID_PAYLOAD", reply.Code)

	// the connection stays usable
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"event":"NOPE"}`)))
	env = next(t, ws, protocol.Error)
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Equal(t, "UNKNOWN_EVENT", reply.Code)
}

func TestSignalDisconnectRetractsIdentity(t *testing.T) {
	o := newOrchestrator()
	ws := dial(t, serve(t, o, Options{}))
	next(t, ws, protocol.DisplayName)
	require.Equal(t, 1, o.Users.Len())

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return o.Users.Len() == 0 && o.Registry.Len() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestSignalRateLimit(t *testing.T) {
	ws := dial(t, serve(t, newOrchestrator(), Options{RateLimit: 0.001, RateBurst: 1}))
	next(t, ws, protocol.DisplayName)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"event":"PING"}`)))
	next(t, ws, protocol.Pong)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"event":"PING"}`)))
	env := next(t, ws, protocol.Error)
	var reply protocol.ErrorReply
	require.NoError(t, json.Unmarshal(env.Data, &reply))
	assert.Equal(t, "RATE_LIMITED", reply.Code)
}

func TestSignalRoomBetweenTwoClients(t *testing.T) {
	o := newOrchestrator()
	url := serve(t, o, Options{})

	a := dial(t, url)
	var ua, ub domain.Identity
	require.NoError(t, json.Unmarshal(next(t, a, protocol.DisplayName).Data, &ua))
	b := dial(t, url)
	require.NoError(t, json.Unmarshal(next(t, b, protocol.DisplayName).Data, &ub))

	create, err := protocol.Encode(protocol.CreateRoom, map[string]any{
		"invited": map[domain.UserID]any{ua.ID: map[string]any{}, ub.ID: map[string]any{}},
	})
	require.NoError(t, err)
	require.NoError(t, a.WriteMessage(websocket.TextMessage, create))

	var created protocol.RoomCreated
	require.NoError(t, json.Unmarshal(next(t, a, protocol.CreateRoomOK).Data, &created))
	require.NotEmpty(t, created.RoomID)

	join, err := protocol.Encode(protocol.ConnectToRoom, map[string]any{"roomId": created.RoomID})
	require.NoError(t, err)
	require.NoError(t, b.WriteMessage(websocket.TextMessage, join))

	var st protocol.Status
	require.NoError(t, json.Unmarshal(next(t, a, protocol.RoomStatus).Data, &st))
	assert.Equal(t, ub.ID, st.UserID)
	assert.True(t, st.Full)
}

func TestWsSignalConnBackpressure(t *testing.T) {
	c := &WsSignalConn{send: make(chan core.Frame, 1)}
	require.NoError(t, c.TrySend(core.Frame("a")))
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), core.ErrBackpressure)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	rl.Forget("a")
	assert.True(t, rl.Allow("a"))

	var off *RateLimiter = NewRateLimiter(0, 0)
	assert.Nil(t, off)
	assert.True(t, off.Allow("a"))
	off.Forget("a")
}

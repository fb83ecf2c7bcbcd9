package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case frame := <-c.Outbound():
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
	return Envelope{}
}

func TestHub_EmitReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub()
	alice := NewClient(1, 4)
	bob := NewClient(2, 4)
	hub.Join(alice, UserRoom(1), AgencyRoom(10))
	hub.Join(bob, UserRoom(2), AgencyRoom(10))

	require.NoError(t, hub.Emit(context.Background(), UserRoom(2), EventNotification, map[string]string{"title": "hi"}))

	env := receive(t, bob)
	assert.Equal(t, EventNotification, env.Event)
	var payload map[string]string
	require.NoError(t, env.Decode(&payload))
	assert.Equal(t, "hi", payload["title"])
	assert.Empty(t, alice.Outbound())

	require.NoError(t, hub.Emit(context.Background(), AgencyRoom(10), EventNotification, map[string]string{}))
	receive(t, alice)
	receive(t, bob)
}

func TestHub_LeaveRemovesMembership(t *testing.T) {
	hub := NewHub()
	c := NewClient(1, 1)
	hub.Join(c, UserRoom(1), UserRoom(1), ClientRoom(3))
	assert.Equal(t, 1, hub.RoomSize(UserRoom(1)))

	hub.Leave(c)
	assert.Equal(t, 0, hub.RoomSize(UserRoom(1)))
	assert.Equal(t, 0, hub.RoomSize(ClientRoom(3)))

	_, open := <-c.Outbound()
	assert.False(t, open)

	require.NoError(t, hub.Emit(context.Background(), UserRoom(1), EventNotification, nil))
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	c := NewClient(1, 1)
	hub.Join(c, UserRoom(1))

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Emit(context.Background(), UserRoom(1), EventNotification, i))
	}
	assert.Len(t, c.Outbound(), 1)
}

func TestHub_ServeWebsocket(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(r.Context(), ws, 5, []string{UserRoom(5)}, func(ctx context.Context, c *Client, env Envelope) error {
			return hub.Emit(ctx, UserRoom(c.UserID), "echo", env.Data)
		})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteJSON(Envelope{Event: "ping", Data: json.RawMessage(`{"n":1}`)}))

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, ws.ReadJSON(&env))
	assert.Equal(t, "echo", env.Event)
	assert.JSONEq(t, `{"n":1}`, string(env.Data))
}

package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	go hub.Run()
	t.Cleanup(hub.Stop)

	e := echo.New()
	e.GET("/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_GreetsAndBroadcasts(t *testing.T) {
	hub := NewHub()
	hub.OnConnect(func() []Message {
		return []Message{NewMessage("property:snapshot", map[string]string{"#IMDb.Scraper.IsInstalled": "true"})}
	})
	conn := startHub(t, hub)

	greeting := readMessage(t, conn)
	assert.Equal(t, "property:snapshot", greeting.Type)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Broadcast("refresh:status", map[string]int{"count": 3}))

	msg := readMessage(t, conn)
	assert.Equal(t, "refresh:status", msg.Type)
	assert.NotEmpty(t, msg.Timestamp)
}

func TestHub_DispatchesClientMessages(t *testing.T) {
	hub := NewHub()
	got := make(chan string, 1)
	hub.Handle(RefreshCancelType, func(payload json.RawMessage) {
		got <- string(payload)
	})
	conn := startHub(t, hub)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"refresh:cancel","payload":{"reason":"user"}}`)))

	select {
	case payload := <-got:
		assert.JSONEq(t, `{"reason":"user"}`, payload)
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}
}

func TestHub_BroadcastAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			_ = hub.Broadcast("x", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked after Stop")
	}
}

func TestHub_BroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			_ = hub.Broadcast("property:changed", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked")
	}

	hub.Stop()
	assert.NoError(t, hub.Broadcast("property:changed", "after stop"))
}

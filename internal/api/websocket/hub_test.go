package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, origins ...string) (*Hub, string) {
	t.Helper()

	hub := NewHub(origins...)
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func TestNewEvent(t *testing.T) {
	event := NewEvent("matchups:updated", map[string]int{"rows": 3})

	_, err := uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, "matchups:updated", event.Type)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)
	assert.NotEqual(t, event.ID, NewEvent("x", nil).ID)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, hub.BroadcastEvent(NewEvent("test:event", nil)))
}

func TestHub_DeliversToEveryClient(t *testing.T) {
	hub, url := startHub(t)

	conns := []*websocket.Conn{dial(t, url, nil), dial(t, url, nil), dial(t, url, nil)}
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 10*time.Millisecond)

	sent := NewEvent("matchups:updated", map[string]int{"rows": 42})
	require.True(t, hub.BroadcastEvent(sent))

	for _, conn := range conns {
		got := readEvent(t, conn)
		assert.Equal(t, sent.ID, got.ID)
		assert.Equal(t, "matchups:updated", got.Type)
		assert.Equal(t, map[string]any{"rows": float64(42)}, got.Data)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url := startHub(t)

	conn := dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_Stop(t *testing.T) {
	hub, url := startHub(t)

	dial(t, url, nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()
	hub.Stop()

	require.Eventually(t, hub.IsStopped, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.BroadcastEvent(NewEvent("late", nil)))

	rec := httptest.NewRecorder()
	hub.ServeWs(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHub_OriginCheck(t *testing.T) {
	_, url := startHub(t, "http://localhost:5173")

	allowed := http.Header{"Origin": []string{"http://localhost:5173"}}
	dial(t, url, allowed)

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, originChecker(nil)(req("http://anything")))
	assert.True(t, originChecker([]string{"*"})(req("http://anything")))
	assert.True(t, originChecker([]string{"http://a"})(req("")))
	assert.True(t, originChecker([]string{"http://a"})(req("http://a")))
	assert.False(t, originChecker([]string{"http://a"})(req("http://b")))
}

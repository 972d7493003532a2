package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codearena/models"
	"codearena/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]string

func (s stubSessions) ParseSession(token string) (*utils.Claims, error) {
	if id, ok := s[token]; ok {
		return &utils.Claims{UserID: id}, nil
	}
	return nil, errors.New("bad token")
}

func newHubServer(t *testing.T) (*GamificationHub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewGamificationHub()
	r := gin.New()
	r.GET("/ws/gamification", hub.Handler(stubSessions{"tok-a": "user-a", "tok-b": "user-b"}))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/gamification"
	header := http.Header{}
	header.Set("Cookie", "token="+token)
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	var hello map[string]interface{}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])
	return conn
}

func waitForClients(t *testing.T, hub *GamificationHub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestGamificationHub_DeliversOnlyToOwner(t *testing.T) {
	hub, srv := newHubServer(t)
	a := dial(t, srv, "tok-a")
	b := dial(t, srv, "tok-b")
	waitForClients(t, hub, 2)

	hub.Publish(models.GamificationEvent{Type: models.EventBadgeAwarded, UserID: "user-b", BadgeName: "Mentor"})
	hub.Publish(models.GamificationEvent{Type: models.EventBadgeAwarded, UserID: "user-a", BadgeName: "Sharer"})

	var got models.GamificationEvent
	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, a.ReadJSON(&got))
	assert.Equal(t, "Sharer", got.BadgeName)

	require.NoError(t, b.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, b.ReadJSON(&got))
	assert.Equal(t, "Mentor", got.BadgeName)
	assert.Equal(t, "user-b", got.UserID)
}

func TestGamificationHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dial(t, srv, "tok-a")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestGamificationHandler_RejectsBadToken(t *testing.T) {
	_, srv := newHubServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/gamification"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGamificationHub_PublishWithoutClients(t *testing.T) {
	hub := NewGamificationHub()
	assert.NotPanics(t, func() {
		hub.Publish(models.GamificationEvent{Type: models.EventLevelUp, UserID: "nobody"})
	})
}

func TestServeStopsWhenGreetingFails(t *testing.T) {
	hub := NewGamificationHub()
	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		conn.UnderlyingConn().Close()
		done <- hub.serve(&GamificationClient{Conn: conn, UserID: "user-a"})
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send greeting")
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

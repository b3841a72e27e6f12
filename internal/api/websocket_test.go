package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/telvora/telvora/internal/events"
)

// wsPair upgrades one connection through a throwaway server and
// returns both ends.
func wsPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-connCh:
		return server, client
	case <-time.After(2 * time.Second):
		t.Fatal("no server-side connection")
		return nil, nil
	}
}

func TestHubSurvivesStaleClientDuringBroadcast(t *testing.T) {
	feed := make(chan events.Envelope, 4)
	hub := NewHub(feed)

	stale, staleClient := wsPair(t)
	staleClient.Close()
	stale.UnderlyingConn().Close() // every write to this conn now fails

	hub.register <- stale
	feed <- events.Envelope{Type: events.TypeAnalyticCompleted, Timestamp: 1}

	// The run loop must keep serving registrations after hitting the
	// dead conn mid-broadcast.
	healthy, healthyClient := wsPair(t)
	select {
	case hub.register <- healthy:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting registrations after broadcasting to a dead client")
	}

	feed <- events.Envelope{Type: events.TypeSimulationCompleted, Timestamp: 2}

	deadline := time.Now().Add(2 * time.Second)
	for {
		healthyClient.SetReadDeadline(deadline)
		_, payload, err := healthyClient.ReadMessage()
		if err != nil {
			t.Fatalf("healthy client received no broadcast: %v", err)
		}
		if strings.Contains(string(payload), events.TypeSimulationCompleted) {
			return
		}
	}
}

func TestHandleConnectionSendsHelloFirst(t *testing.T) {
	feed := make(chan events.Envelope)
	hub := NewHub(feed)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleConnection))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var hello struct {
		Type string `json:"type"`
	}
	if err := client.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "connection_established" {
		t.Errorf("first message type = %q, want connection_established", hello.Type)
	}
}

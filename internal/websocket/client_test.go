package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/model"
)

// connPair upgrades one connection through a test server and returns both
// ends: the server side (wrapped by Client) and the dialing peer.
func connPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = peer.Close() })

	return <-serverSide, peer
}

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestPingRepliesWithPong(t *testing.T) {
	hub := runHub(t)
	serverConn, peer := connPair(t)

	client := NewClient(hub, serverConn, 7)
	hub.Register(client)
	go client.WritePump()
	go client.ReadPump()

	if err := peer.WriteJSON(RequestEnvelope{Action: ActionPing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	var pong PongResponse
	if err := peer.ReadJSON(&pong); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if pong.Event != EventPong {
		t.Fatalf("event = %q, want %q", pong.Event, EventPong)
	}
}

// A client the hub has already dropped can still receive frames from its
// peer; handling them must not crash the read pump.
func TestPingAfterCloseDoesNotPanic(t *testing.T) {
	hub := runHub(t)
	serverConn, peer := connPair(t)

	client := NewClient(hub, serverConn, 7)
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		client.ReadPump()
		close(done)
	}()

	client.Close()
	client.Close() // idempotent

	if client.enqueue([]byte(`{}`)) {
		t.Fatal("enqueue after close should report failure")
	}

	if err := peer.WriteJSON(RequestEnvelope{Action: ActionPing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	_ = peer.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not exit")
	}
}

// Clients that stop draining their buffer are dropped by the broadcast loop
// instead of blocking it.
func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := runHub(t)
	serverConn, _ := connPair(t)
	defer serverConn.Close()

	// No write pump: the buffer fills and the client counts as slow.
	client := NewClient(hub, serverConn, 7)
	hub.Register(client)

	for i := 0; i < cap(client.send)+4; i++ {
		hub.BroadcastPostPublished(postFixture())
		time.Sleep(5 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for !isClosed(client) {
		select {
		case <-deadline:
			t.Fatal("slow client was never dropped")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func postFixture() model.Post {
	return model.Post{ID: 12, Title: "Exam schedule", Content: "Posted.", Status: model.PostStatusPublished}
}

func isClosed(c *Client) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

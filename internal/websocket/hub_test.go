package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	// Double unregister must not panic.
	hub.Unregister(c1)
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(NewMessage("person", "created", 42, nil))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("unmarshal broadcast: %v", err)
			}
			if msg.Type != "person_created" || msg.ID != 42 {
				t.Errorf("msg = %+v", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	// Fill the buffer and then some; Broadcast must never block.
	for i := 0; i < sendBufferSize+5; i++ {
		hub.Broadcast(NewMessage("chore", "created", int64(i), nil))
	}

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}

func TestNewMessageType(t *testing.T) {
	msg := NewMessage("assignment", "completed", 7, map[string]any{"person_id": int64(3)})
	if msg.Type != "assignment_completed" {
		t.Errorf("type = %q", msg.Type)
	}
	if msg.Entity != "assignment" || msg.Action != "completed" || msg.ID != 7 {
		t.Errorf("msg = %+v", msg)
	}
}

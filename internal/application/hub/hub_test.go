package hub

import (
	"testing"

	"go.uber.org/zap"

	"canvasroom/internal/application/client"
)

func newTestClient(id string, buffer int) *client.Client {
	return &client.Client{
		ID:   id,
		Send: make(chan []byte, buffer),
		Log:  zap.NewNop(),
	}
}

func drain(c *client.Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestBroadcastIsRoomScoped(t *testing.T) {
	h := NewHub(zap.NewNop())

	a := newTestClient("a", 8)
	b := newTestClient("b", 8)
	outsider := newTestClient("c", 8)
	unbound := newTestClient("d", 8)
	for _, c := range []*client.Client{a, b, outsider, unbound} {
		h.Add(c)
	}
	h.Bind(a.ID, Session{UserID: "u1", Username: "Alice", RoomID: "R1"})
	h.Bind(b.ID, Session{UserID: "u2", Username: "Bob", RoomID: "R1"})
	h.Bind(outsider.ID, Session{UserID: "u3", Username: "Carol", RoomID: "R2"})

	h.BroadcastRoom("R1", []byte("hello"), "")

	if got := drain(a); len(got) != 1 || string(got[0]) != "hello" {
		t.Fatalf("expected a to receive broadcast, got %v", got)
	}
	if got := drain(b); len(got) != 1 {
		t.Fatalf("expected b to receive broadcast, got %v", got)
	}
	if got := drain(outsider); len(got) != 0 {
		t.Fatalf("other room must not receive broadcast, got %v", got)
	}
	if got := drain(unbound); len(got) != 0 {
		t.Fatalf("sessionless connection must not receive broadcast, got %v", got)
	}
}

func TestBroadcastExcludesAuthor(t *testing.T) {
	h := NewHub(zap.NewNop())

	a := newTestClient("a", 8)
	b := newTestClient("b", 8)
	h.Add(a)
	h.Add(b)
	h.Bind(a.ID, Session{RoomID: "R1"})
	h.Bind(b.ID, Session{RoomID: "R1"})

	h.BroadcastRoom("R1", []byte("cursor"), a.ID)

	if got := drain(a); len(got) != 0 {
		t.Fatalf("author must not get its own cursor, got %v", got)
	}
	if got := drain(b); len(got) != 1 {
		t.Fatalf("peer should get cursor, got %v", got)
	}
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(zap.NewNop())

	slow := newTestClient("slow", 1)
	h.Add(slow)
	h.Bind(slow.ID, Session{RoomID: "R1"})

	h.BroadcastRoom("R1", []byte("one"), "")
	h.BroadcastRoom("R1", []byte("two"), "")

	got := drain(slow)
	if len(got) != 1 || string(got[0]) != "one" {
		t.Fatalf("expected overflow dropped, got %v", got)
	}
}

func TestRemoveClosesSendAndForgetsSession(t *testing.T) {
	h := NewHub(zap.NewNop())

	c := newTestClient("a", 1)
	h.Add(c)
	h.Bind(c.ID, Session{RoomID: "R1"})

	h.Remove(c)
	if _, ok := h.SessionOf(c.ID); ok {
		t.Fatalf("session should be gone after remove")
	}
	if _, open := <-c.Send; open {
		t.Fatalf("send channel should be closed")
	}
	// Double remove is a no-op, not a double close.
	h.Remove(c)

	if ids := h.RoomClients("R1"); len(ids) != 0 {
		t.Fatalf("expected no room clients, got %v", ids)
	}
}

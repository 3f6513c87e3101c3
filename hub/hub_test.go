package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func waitForClients(t *testing.T, h *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientsInRoom(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s has %d clients, want %d", room, h.ClientsInRoom(room), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	room := RoomForDraw("d1")
	subscriber := NewClient(h, nil, room)
	other := NewClient(h, nil, RoomForDraw("d2"))
	h.Register(subscriber)
	h.Register(other)
	waitForClients(t, h, room, 1)

	h.BroadcastToRoom(room, Message{Type: MessageDrawUpdated, Payload: map[string]string{"drawId": "d1"}, RoomID: room})

	select {
	case raw := <-subscriber.send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != MessageDrawUpdated || msg.RoomID != room {
			t.Errorf("message = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber received nothing")
	}
	select {
	case raw := <-other.send:
		t.Errorf("client of another room received %s", raw)
	default:
	}

	h.Unregister(subscriber)
	waitForClients(t, h, room, 0)
	if _, ok := <-subscriber.send; ok {
		t.Errorf("send channel still open after unregister")
	}
	if subscriber.deliver([]byte("late")) {
		t.Errorf("closed client accepted a message")
	}
}

func TestRunClosesClientsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := NewClient(h, nil, RoomForDraw("d1"))
	h.Register(c)
	waitForClients(t, h, c.Room(), 1)
	cancel()
	<-done

	if _, ok := <-c.send; ok {
		t.Errorf("send channel open after hub stopped")
	}
	if h.ClientsInRoom(c.Room()) != 0 {
		t.Errorf("rooms not cleared")
	}
}

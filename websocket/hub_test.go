package websocket

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSendToUserQueuesEvents(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	if err := hub.SendToUser(userID, Event{Type: "connected"}); err == nil {
		t.Error("SendToUser should fail for a user with no connection")
	}

	client := NewClient(userID, nil)
	hub.mu.Lock()
	hub.clients[userID] = client
	hub.mu.Unlock()

	if err := hub.NotifyBookingCreated(userID, map[string]string{"reference": "BC-1234ABCD"}); err != nil {
		t.Fatalf("NotifyBookingCreated error: %v", err)
	}
	if err := hub.NotifyBookingUpdated(userID, nil); err != nil {
		t.Fatalf("NotifyBookingUpdated error: %v", err)
	}

	// Events arrive on the client's send channel in order; the write
	// loop is the sole reader of this channel in production.
	first := <-client.send
	if first.Type != EventBookingCreated {
		t.Errorf("first queued event = %q, want %q", first.Type, EventBookingCreated)
	}
	second := <-client.send
	if second.Type != EventBookingUpdated {
		t.Errorf("second queued event = %q, want %q", second.Type, EventBookingUpdated)
	}
}

func TestSendToUserDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()
	client := NewClient(userID, nil)
	hub.mu.Lock()
	hub.clients[userID] = client
	hub.mu.Unlock()

	for i := 0; i < cap(client.send); i++ {
		if err := hub.SendToUser(userID, Event{Type: EventBookingUpdated}); err != nil {
			t.Fatalf("send %d failed before the buffer filled: %v", i, err)
		}
	}
	if err := hub.SendToUser(userID, Event{Type: EventBookingUpdated}); err == nil {
		t.Error("SendToUser should report a full buffer instead of blocking")
	}
}

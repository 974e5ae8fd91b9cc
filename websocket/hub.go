package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to connected clients
const (
	EventBookingCreated = "booking_created"
	EventBookingUpdated = "booking_updated"
	EventPaymentUpdated = "payment_updated"
)

// Event is a message sent over WebSocket
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userId,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
	send   chan Event
}

// NewClient wraps an upgraded connection for the hub
func NewClient(userID primitive.ObjectID, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan Event, 8),
	}
}

// enqueue queues an event without blocking; a full buffer drops it
func (c *Client) enqueue(event Event) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// writeLoop is the only writer on the connection
func (c *Client) writeLoop() {
	for event := range c.send {
		if err := c.Conn.WriteJSON(event); err != nil {
			return
		}
	}
}

// Hub maintains the set of active clients, keyed by user ID. Providers
// keep a connection open from their dashboard to see bookings arrive live.
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
			go client.writeLoop()
		case client := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.clients[client.UserID]; ok && existing == client {
				delete(h.clients, client.UserID)
			}
			close(client.send)
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser queues an event for a specific connected user. The send
// buffer is filled under the read lock so it cannot race the channel
// close in the unregister path.
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return fmt.Errorf("user not connected")
	}
	if !client.enqueue(event) {
		return fmt.Errorf("client send buffer full")
	}
	return nil
}

// NotifyBookingCreated pushes a new booking to the provider's dashboard
func (h *Hub) NotifyBookingCreated(providerUserID primitive.ObjectID, booking interface{}) error {
	return h.SendToUser(providerUserID, Event{
		Type:    EventBookingCreated,
		Message: "New booking received",
		Data:    booking,
	})
}

// NotifyBookingUpdated pushes a status change to whoever is watching
func (h *Hub) NotifyBookingUpdated(userID primitive.ObjectID, booking interface{}) error {
	return h.SendToUser(userID, Event{
		Type:    EventBookingUpdated,
		Message: "Booking updated",
		Data:    booking,
	})
}

// Package realtime keeps the live socket connections grouped into rooms.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	EventNotification   = "notification"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventError          = "error"
)

// Envelope is the frame exchanged over the socket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Emitter pushes an event to every connection joined to a room.
type Emitter interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}

func UserRoom(id uint64) string   { return fmt.Sprintf("user_%d", id) }
func AgencyRoom(id uint64) string { return fmt.Sprintf("agency_%d", id) }
func ClientRoom(id uint64) string { return fmt.Sprintf("client_%d", id) }

// Client is one live connection registered with the hub.
type Client struct {
	ID     string
	UserID uint64
	send   chan []byte
	once   sync.Once
}

func NewClient(userID uint64, buffer int) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, buffer),
	}
}

// Outbound is the queue drained by the connection writer.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub is the connection registry: room name to the set of joined clients.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	members map[*Client][]string
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		members: make(map[*Client][]string),
	}
}

// Join adds the client to each room.
func (h *Hub) Join(c *Client, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range rooms {
		set, ok := h.rooms[room]
		if !ok {
			set = make(map[*Client]struct{})
			h.rooms[room] = set
		}
		if _, joined := set[c]; joined {
			continue
		}
		set[c] = struct{}{}
		h.members[c] = append(h.members[c], room)
	}
}

// Leave removes the client from every room and closes its queue.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	for _, room := range h.members[c] {
		set := h.rooms[room]
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.members, c)
	h.mu.Unlock()

	c.close()
}

// RoomSize reports how many clients are joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit delivers to the local registry. It satisfies Emitter for single-instance deployments.
func (h *Hub) Emit(_ context.Context, room, event string, payload interface{}) error {
	frame, err := encode(event, payload)
	if err != nil {
		return err
	}
	h.deliver(room, frame)
	return nil
}

func (h *Hub) deliver(room string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- frame:
		default:
			log.Warn().Str("room", room).Str("conn", c.ID).Msg("Dropping realtime frame for slow connection")
		}
	}
}

func encode(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

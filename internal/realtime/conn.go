package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// InboundHandler handles one client frame; a returned error is sent back as an "error" event.
type InboundHandler func(ctx context.Context, c *Client, env Envelope) error

// Serve registers the socket in the hub under rooms and pumps frames until it closes.
func (h *Hub) Serve(ctx context.Context, ws *websocket.Conn, userID uint64, rooms []string, handle InboundHandler) {
	client := NewClient(userID, sendBuffer)
	h.Join(client, rooms...)
	log.Debug().Str("conn", client.ID).Uint64("user_id", userID).Strs("rooms", rooms).Msg("Socket connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(ws, client)
	}()

	readPump(ctx, ws, client, handle)

	h.Leave(client)
	<-done
	log.Debug().Str("conn", client.ID).Uint64("user_id", userID).Msg("Socket disconnected")
}

func readPump(ctx context.Context, ws *websocket.Conn, c *Client, handle InboundHandler) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.ID).Msg("Socket read failed")
			}
			return
		}
		if handle == nil {
			continue
		}
		if err := handle(ctx, c, env); err != nil {
			frame, encErr := encode(EventError, map[string]string{"message": err.Error()})
			if encErr != nil {
				continue
			}
			select {
			case c.send <- frame:
			default:
			}
		}
	}
}

func writePump(ws *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

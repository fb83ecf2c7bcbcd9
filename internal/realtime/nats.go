package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const SubjectRoomEvents = "agency.events"

type roomEvent struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NatsEmitter fans room events out through NATS so every instance delivers
// them to its own hub.
type NatsEmitter struct {
	conn *nats.Conn
	sub  *nats.Subscription
	hub  *Hub
}

func NewNatsEmitter(url string, hub *Hub) (*NatsEmitter, error) {
	nc, err := nats.Connect(url, nats.Name("agency-hub"))
	if err != nil {
		return nil, fmt.Errorf("nats connect failed: %w", err)
	}

	e := &NatsEmitter{conn: nc, hub: hub}
	e.sub, err = nc.Subscribe(SubjectRoomEvents, e.receive)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats subscribe failed: %w", err)
	}

	return e, nil
}

func (e *NatsEmitter) Emit(_ context.Context, room, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event, err)
	}
	msg, err := json.Marshal(roomEvent{Room: room, Event: event, Data: data})
	if err != nil {
		return err
	}
	return e.conn.Publish(SubjectRoomEvents, msg)
}

func (e *NatsEmitter) receive(msg *nats.Msg) {
	var ev roomEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		log.Warn().Err(err).Msg("Discarding malformed room event")
		return
	}
	frame, err := json.Marshal(Envelope{Event: ev.Event, Data: ev.Data})
	if err != nil {
		log.Warn().Err(err).Msg("Discarding room event")
		return
	}
	e.hub.deliver(ev.Room, frame)
}

func (e *NatsEmitter) Close() {
	if e.sub != nil {
		_ = e.sub.Unsubscribe()
	}
	e.conn.Close()
}

package events

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/game"
	"encoding/json"
	"fmt"
)

//go:generate mockgen -destination=mock_events/mock_publisher.go -package=mock_events ctchen222/tictactoe-rooms/internal/events Publisher

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Room lifecycle event types.
const (
	RoomCreated  = "room_created"
	PlayerJoined = "player_joined"
	PlayerLeft   = "player_left"
	RoomClosed   = "room_closed"
	StateChanged = "state_changed"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RoomPayload is the payload shared by every room lifecycle event.
type RoomPayload struct {
	RoomID   string          `json:"room_id"`
	PlayerID string          `json:"player_id,omitempty"`
	Mark     game.PlayerMark `json:"mark,omitempty"`
	State    *game.State     `json:"state,omitempty"`
}

// Publisher delivers lifecycle events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// New builds an event of the given type.
func New(eventType string, payload RoomPayload) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: data}, nil
}

// Decode unmarshals the payload of e.
func (e Event) Decode() (RoomPayload, error) {
	var payload RoomPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return RoomPayload{}, fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return payload, nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

package proto

import (
	"ctchen222/tictactoe-rooms/internal/game"
	"ctchen222/tictactoe-rooms/internal/room"
	"encoding/json"
)

// Envelope event names.
const (
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventGameEvent  = "game_event"
	EventRooms      = "rooms"
	EventAssignment = "assignment"
)

// game_event types.
const (
	GameEventMove  = "move"
	GameEventReset = "reset"
	GameEventState = "state"
	GameEventError = "error"
)

// Rejection reasons, sent only when rejection replies are enabled.
const (
	ReasonNotJoined     = "not_joined"
	ReasonRoomFull      = "room_full"
	ReasonNotYourTurn   = "not_your_turn"
	ReasonInvalidMove   = "invalid_move"
	ReasonAlreadyJoined = "already_joined"
	ReasonUnknownType   = "unknown_type"
)

// ClientToServerMessage is the envelope of every client frame.
type ClientToServerMessage struct {
	Event   string          `json:"event" validate:"required,oneof=create_room join_room game_event"`
	Payload json.RawMessage `json:"payload"`
}

// RoomRequest is the decoded payload of create_room and join_room.
type RoomRequest struct {
	RoomID string `validate:"required,max=64,printascii"`
}

// GameEvent is the tagged union carried by game_event in both directions.
type GameEvent struct {
	Type   string          `json:"type" validate:"required"`
	Data   json.RawMessage `json:"data,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// MoveData is the data of a move game_event.
type MoveData struct {
	Index *int `json:"index" validate:"required"`
}

// ServerToClientMessage is the envelope of every server frame.
type ServerToClientMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// StateEvent is the game_event payload carrying the authoritative state.
type StateEvent struct {
	Type string     `json:"type"`
	Data game.State `json:"data"`
}

// ErrorEvent is the game_event payload of a rejection reply.
type ErrorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// RoomsMessage is the payload of the lobby roster.
type RoomsMessage struct {
	Rooms []room.Summary `json:"rooms"`
}

// PlayerAssignmentMessage informs a player of their assigned mark.
type PlayerAssignmentMessage struct {
	RoomID   string          `json:"roomId"`
	PlayerID string          `json:"playerId"`
	Mark     game.PlayerMark `json:"mark"`
}

// NewStateMessage builds a state game_event frame.
func NewStateMessage(state game.State) *ServerToClientMessage {
	return &ServerToClientMessage{
		Event:   EventGameEvent,
		Payload: StateEvent{Type: GameEventState, Data: state},
	}
}

// NewErrorMessage builds a rejection reply frame.
func NewErrorMessage(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{
		Event:   EventGameEvent,
		Payload: ErrorEvent{Type: GameEventError, Reason: reason},
	}
}

// NewRoomsMessage builds a roster frame. A nil list is sent as an empty array.
func NewRoomsMessage(rooms []room.Summary) *ServerToClientMessage {
	if rooms == nil {
		rooms = []room.Summary{}
	}
	return &ServerToClientMessage{
		Event:   EventRooms,
		Payload: RoomsMessage{Rooms: rooms},
	}
}

// NewAssignmentMessage builds the frame telling a joiner which mark it holds.
func NewAssignmentMessage(roomID, playerID string, mark game.PlayerMark) *ServerToClientMessage {
	return &ServerToClientMessage{
		Event:   EventAssignment,
		Payload: PlayerAssignmentMessage{RoomID: roomID, PlayerID: playerID, Mark: mark},
	}
}

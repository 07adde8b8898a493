package validator

import (
	"ctchen222/tictactoe-rooms/pkg/proto"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// ErrInvalidRoomID is returned when a room request carries an unusable id.
var ErrInvalidRoomID = errors.New("invalid room id")

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
}

func GetValidator() *validator.Validate {
	return validate
}

// DecodeClientMessage parses and validates a raw client frame.
func DecodeClientMessage(data []byte) (*proto.ClientToServerMessage, error) {
	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client message: %w", err)
	}
	if err := validate.Struct(&msg); err != nil {
		return nil, fmt.Errorf("invalid client message: %w", err)
	}
	return &msg, nil
}

// DecodeRoomID parses the room id carried by create_room and join_room.
func DecodeRoomID(payload json.RawMessage) (string, error) {
	var req proto.RoomRequest
	if err := json.Unmarshal(payload, &req.RoomID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoomID, err)
	}
	if err := validate.Struct(&req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoomID, err)
	}
	return req.RoomID, nil
}

// DecodeGameEvent parses and validates a game_event payload.
func DecodeGameEvent(payload json.RawMessage) (*proto.GameEvent, error) {
	var ev proto.GameEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game event: %w", err)
	}
	if err := validate.Struct(&ev); err != nil {
		return nil, fmt.Errorf("invalid game event: %w", err)
	}
	return &ev, nil
}

// DecodeMove parses the index of a move game_event.
func DecodeMove(data json.RawMessage) (int, error) {
	var move proto.MoveData
	if len(data) == 0 {
		return 0, errors.New("move without data")
	}
	if err := json.Unmarshal(data, &move); err != nil {
		return 0, fmt.Errorf("failed to unmarshal move: %w", err)
	}
	if err := validate.Struct(&move); err != nil {
		return 0, fmt.Errorf("invalid move: %w", err)
	}
	return *move.Index, nil
}

package room

import (
	"ctchen222/tictactoe-rooms/internal/game"
)

// Players holds the identity seated in each slot. An empty string is a free slot.
type Players struct {
	X string `json:"X,omitempty"`
	O string `json:"O,omitempty"`
}

// Room pairs up to two connection identities with one game.
//
// Room is a value: the mutators return a modified copy and never touch the
// receiver, so a stored room only changes when it is saved back.
type Room struct {
	ID      string     `json:"id"`
	State   game.State `json:"state"`
	Players Players    `json:"players"`
}

// New creates a room with the initial game state and both slots free.
func New(id string) Room {
	return Room{
		ID:    id,
		State: game.Reset(),
	}
}

// AddPlayer seats playerID in X if it is free, otherwise in O.
// A full room is returned unchanged together with game.None.
// An identity that is already seated is not checked for.
func (r Room) AddPlayer(playerID string) (Room, game.PlayerMark) {
	switch {
	case r.Players.X == "":
		r.Players.X = playerID
		return r, game.PlayerX
	case r.Players.O == "":
		r.Players.O = playerID
		return r, game.PlayerO
	}
	return r, game.None
}

// RemovePlayer frees the slot held by playerID, if any.
func (r Room) RemovePlayer(playerID string) Room {
	if playerID == "" {
		return r
	}
	if r.Players.X == playerID {
		r.Players.X = ""
	}
	if r.Players.O == playerID {
		r.Players.O = ""
	}
	return r
}

// SlotOf returns the mark held by playerID, or game.None.
func (r Room) SlotOf(playerID string) game.PlayerMark {
	switch {
	case playerID == "":
		return game.None
	case r.Players.X == playerID:
		return game.PlayerX
	case r.Players.O == playerID:
		return game.PlayerO
	}
	return game.None
}

// Holder returns the identity seated in the given slot.
func (r Room) Holder(mark game.PlayerMark) string {
	switch mark {
	case game.PlayerX:
		return r.Players.X
	case game.PlayerO:
		return r.Players.O
	}
	return ""
}

// Members returns the seated identities, X first.
func (r Room) Members() []string {
	members := make([]string, 0, 2)
	if r.Players.X != "" {
		members = append(members, r.Players.X)
	}
	if r.Players.O != "" {
		members = append(members, r.Players.O)
	}
	return members
}

func (r Room) IsFull() bool {
	return r.Players.X != "" && r.Players.O != ""
}

func (r Room) IsEmpty() bool {
	return r.Players.X == "" && r.Players.O == ""
}

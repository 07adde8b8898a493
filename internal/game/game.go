package game

import (
	"bytes"
	"encoding/json"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Result is the outcome of a game: a winning mark, a draw, or nothing yet.
type Result string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game results
	NoResult Result = ""
	WinnerX  Result = "X"
	WinnerO  Result = "O"
	Draw     Result = "Draw"

	// Board boundaries
	BorderMin = 0
	BorderMax = 8
)

var jsonNull = []byte("null")

// Board is a row-major 3x3 grid, index 0 is the top-left cell.
type Board [9]PlayerMark

// State is the canonical state of one game.
type State struct {
	Board         Board      `json:"board"`
	CurrentPlayer PlayerMark `json:"currentPlayer"`
	Winner        Result     `json:"winner"`
}

// Reset returns the initial state: empty board, X to move, no winner.
func Reset() State {
	return State{CurrentPlayer: PlayerX, Winner: NoResult}
}

// ApplyMove places the current player's mark at index and returns the next state.
// An out-of-range index, an occupied cell or a finished game leave the state unchanged.
func ApplyMove(s State, index int) State {
	if index < BorderMin || index > BorderMax {
		return s
	}
	if s.Board[index] != None || s.Winner != NoResult {
		return s
	}

	next := s
	next.Board[index] = s.CurrentPlayer
	next.Winner = checkWinner(next.Board)
	if next.Winner == NoResult {
		next.CurrentPlayer = s.CurrentPlayer.Opponent()
	}
	return next
}

// Over reports whether the game has reached a terminal result.
func (s State) Over() bool {
	return s.Winner != NoResult
}

// Opponent returns the other mark. None has no opponent.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Valid reports whether m is X or O.
func (m PlayerMark) Valid() bool {
	return m == PlayerX || m == PlayerO
}

// MarshalJSON encodes an empty cell as null.
func (m PlayerMark) MarshalJSON() ([]byte, error) {
	if m == None {
		return jsonNull, nil
	}
	return json.Marshal(string(m))
}

func (m *PlayerMark) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*m = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = PlayerMark(s)
	return nil
}

// MarshalJSON encodes a missing result as null.
func (r Result) MarshalJSON() ([]byte, error) {
	if r == NoResult {
		return jsonNull, nil
	}
	return json.Marshal(string(r))
}

func (r *Result) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*r = NoResult
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Result(s)
	return nil
}

package room

import "sort"

// Summary is the lobby view of a room: its id and which slots are taken.
type Summary struct {
	ID string `json:"id"`
	X  bool   `json:"x"`
	O  bool   `json:"o"`
}

// Summarize returns the lobby view of r.
func (r Room) Summarize() Summary {
	return Summary{
		ID: r.ID,
		X:  r.Players.X != "",
		O:  r.Players.O != "",
	}
}

// Summaries returns the lobby view of rooms sorted by id.
func Summaries(rooms []Room) []Summary {
	list := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		list = append(list, r.Summarize())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

package registry

import (
	"testing"

	"ctchen222/tictactoe-rooms/internal/game"
	"ctchen222/tictactoe-rooms/internal/room"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	reg := New()

	// Given an unknown room id
	// When it is requested twice
	first, created := reg.GetOrCreate("r1")
	require.True(t, created)

	first, _ = first.AddPlayer("alice")
	reg.Save(first)

	second, created := reg.GetOrCreate("r1")

	// Then the second call returns the stored room
	assert.False(t, created)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, reg.Len())
}

func TestGet_Unknown(t *testing.T) {
	reg := New()

	_, ok := reg.Get("missing")

	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestSave_LastWriteWins(t *testing.T) {
	reg := New()
	rm, _ := reg.GetOrCreate("r1")

	moved := rm
	moved.State = game.ApplyMove(moved.State, 4)
	reg.Save(moved)

	got, ok := reg.Get("r1")
	require.True(t, ok)
	assert.Equal(t, game.PlayerX, got.State.Board[4])
}

func TestSave_CopiesAreIndependent(t *testing.T) {
	reg := New()
	rm, _ := reg.GetOrCreate("r1")

	// Mutating a fetched copy without saving leaves the stored room alone.
	rm.State = game.ApplyMove(rm.State, 0)

	got, _ := reg.Get("r1")
	assert.Equal(t, game.Reset(), got.State)
}

func TestDeleteIfEmpty(t *testing.T) {
	reg := New()
	rm, _ := reg.GetOrCreate("r1")
	rm, _ = rm.AddPlayer("alice")
	reg.Save(rm)

	assert.False(t, reg.DeleteIfEmpty("r1"), "occupied room must be kept")
	assert.False(t, reg.DeleteIfEmpty("missing"))

	reg.Save(rm.RemovePlayer("alice"))

	assert.True(t, reg.DeleteIfEmpty("r1"))
	_, ok := reg.Get("r1")
	assert.False(t, ok)
}

func TestRooms_Sorted(t *testing.T) {
	reg := New()
	reg.GetOrCreate("c")
	reg.GetOrCreate("a")
	reg.GetOrCreate("b")

	var ids []string
	for _, rm := range reg.Rooms() {
		ids = append(ids, rm.ID)
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, []room.Summary{{ID: "a"}, {ID: "b"}, {ID: "c"}}, room.Summaries(reg.Rooms()))
}

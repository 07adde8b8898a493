package registry

import (
	"ctchen222/tictactoe-rooms/internal/room"
	"sort"
)

// Registry maps room ids to rooms.
//
// It has no locking. It belongs to the hub event loop and must only be used
// from that goroutine.
type Registry struct {
	rooms map[string]room.Room
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{rooms: make(map[string]room.Room)}
}

// GetOrCreate returns the room stored under id, creating and storing a fresh
// one if there is none. created reports whether a new room was made.
func (r *Registry) GetOrCreate(id string) (rm room.Room, created bool) {
	if existing, ok := r.rooms[id]; ok {
		return existing, false
	}
	rm = room.New(id)
	r.rooms[id] = rm
	return rm, true
}

// Get returns the room stored under id.
func (r *Registry) Get(id string) (room.Room, bool) {
	rm, ok := r.rooms[id]
	return rm, ok
}

// Save replaces the stored copy of rm.
func (r *Registry) Save(rm room.Room) {
	r.rooms[rm.ID] = rm
}

// DeleteIfEmpty removes the room when both of its slots are free and reports
// whether it did.
func (r *Registry) DeleteIfEmpty(id string) bool {
	rm, ok := r.rooms[id]
	if !ok || !rm.IsEmpty() {
		return false
	}
	delete(r.rooms, id)
	return true
}

// Rooms returns a copy of every stored room, sorted by id.
func (r *Registry) Rooms() []room.Room {
	list := make([]room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		list = append(list, rm)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *Registry) Len() int {
	return len(r.rooms)
}

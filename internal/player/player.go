package player

import "time"

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

// Peer is the outbound side of a connected client as the hub sees it.
// Send must not block; it reports false when the frame was not queued.
type Peer interface {
	ID() string
	Send(data []byte) bool
}

// Player is a connected client: a transient identity plus its connection.
type Player struct {
	id   string
	Conn Connection
}

// NewPlayer creates a new player.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{id: id, Conn: conn}
}

// ID returns the player's connection identity.
func (p *Player) ID() string {
	return p.id
}

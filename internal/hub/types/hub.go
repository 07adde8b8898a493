package types

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/player"
)

// Inbound is one raw frame read from a peer, queued for the hub loop.
// Closed marks the end of the peer's connection; Message is then empty.
type Inbound struct {
	Peer    player.Peer
	Message []byte
	Closed  bool
	Ctx     context.Context
}

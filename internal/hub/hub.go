package hub

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/events"
	"ctchen222/tictactoe-rooms/internal/hub/types"
	"ctchen222/tictactoe-rooms/internal/player"
	"ctchen222/tictactoe-rooms/internal/registry"
	"ctchen222/tictactoe-rooms/internal/room"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// ErrHubStopped is returned when the hub loop is no longer running.
var ErrHubStopped = errors.New("hub is not running")

const defaultQueueSize = 256

// Options tunes a Hub.
type Options struct {
	// QueueSize bounds the number of inbound frames waiting for the loop.
	QueueSize int
	// RejectionReplies makes the hub answer dropped requests with an error frame
	// sent to the requester only.
	RejectionReplies bool
}

// Hub owns every room and every connected player. All state changes happen on
// the goroutine running Run, one event at a time.
type Hub struct {
	registry  *registry.Registry
	publisher events.Publisher
	sessions  map[string]*session

	register chan player.Peer
	inbound  chan *types.Inbound
	roster   chan chan []room.Summary
	done     chan struct{}

	rejectionReplies bool
	metrics          *hubMetrics
}

// session tracks one connected peer. roomID is empty until a join succeeds.
type session struct {
	peer   player.Peer
	roomID string
}

func (s *session) joined() bool {
	return s.roomID != ""
}

// NewHub creates a new hub.
func NewHub(reg *registry.Registry, publisher events.Publisher, opts Options) *Hub {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &Hub{
		registry:         reg,
		publisher:        publisher,
		sessions:         make(map[string]*session),
		register:         make(chan player.Peer),
		inbound:          make(chan *types.Inbound, opts.QueueSize),
		roster:           make(chan chan []room.Summary),
		done:             make(chan struct{}),
		rejectionReplies: opts.RejectionReplies,
		metrics:          newHubMetrics(),
	}
}

// Run processes events until ctx is done. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	slog.InfoContext(ctx, "Hub started")

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Hub stopped", "sessions.count", len(h.sessions), "rooms.count", h.registry.Len())
			return

		case p := <-h.register:
			h.handleRegister(ctx, p)

		case in := <-h.inbound:
			msgCtx := ctx
			if in.Ctx != nil {
				msgCtx = in.Ctx
			}
			if in.Closed {
				h.handleUnregister(msgCtx, in.Peer)
				continue
			}
			h.handleInbound(msgCtx, in)

		case reply := <-h.roster:
			reply <- room.Summaries(h.registry.Rooms())
		}
	}
}

// Connect registers p with the hub. The peer receives the room roster first.
func (h *Hub) Connect(ctx context.Context, p player.Peer) error {
	select {
	case h.register <- p:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect releases every slot held by p and forgets it. It is queued
// behind the frames already delivered for p.
func (h *Hub) Disconnect(ctx context.Context, p player.Peer) {
	if h.stopped() {
		return
	}
	select {
	case h.inbound <- &types.Inbound{Peer: p, Closed: true, Ctx: ctx}:
	case <-h.done:
	}
}

// Deliver queues a raw frame read from p. Frames from one peer are processed
// in the order they were delivered.
func (h *Hub) Deliver(ctx context.Context, p player.Peer, message []byte) error {
	if h.stopped() {
		return ErrHubStopped
	}
	select {
	case h.inbound <- &types.Inbound{Peer: p, Message: message, Ctx: ctx}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rooms returns the lobby roster as seen by the hub loop.
func (h *Hub) Rooms(ctx context.Context) ([]room.Summary, error) {
	reply := make(chan []room.Summary, 1)
	select {
	case h.roster <- reply:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case rooms := <-reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

package hub

import (
	"context"
	"ctchen222/tictactoe-rooms/internal/events"
	"ctchen222/tictactoe-rooms/internal/player"
	"ctchen222/tictactoe-rooms/internal/room"
	"ctchen222/tictactoe-rooms/pkg/proto"
	"encoding/json"
	"log/slog"
)

// send marshals msg and queues it for p. Delivery is not awaited.
func (h *Hub) send(ctx context.Context, p player.Peer, msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling message", "event", msg.Event, "error", err)
		return
	}
	h.deliver(ctx, p, msg.Event, data)
}

func (h *Hub) deliver(ctx context.Context, p player.Peer, event string, data []byte) {
	if !p.Send(data) {
		slog.WarnContext(ctx, "Dropping message for slow or closed player", "player.id", p.ID(), "event", event)
	}
}

// broadcastState sends the room's state to every seated player, the mover included.
func (h *Hub) broadcastState(ctx context.Context, rm room.Room) {
	data, err := json.Marshal(proto.NewStateMessage(rm.State))
	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling state", "room.id", rm.ID, "error", err)
		return
	}
	for _, id := range rm.Members() {
		s, ok := h.sessions[id]
		if !ok {
			slog.WarnContext(ctx, "Seated player has no session", "room.id", rm.ID, "player.id", id)
			continue
		}
		h.deliver(ctx, s.peer, proto.EventGameEvent, data)
	}
}

func (h *Hub) sendRoster(ctx context.Context, p player.Peer) {
	h.send(ctx, p, proto.NewRoomsMessage(room.Summaries(h.registry.Rooms())))
}

// broadcastRoster sends the room roster to every connected player.
func (h *Hub) broadcastRoster(ctx context.Context) {
	data, err := json.Marshal(proto.NewRoomsMessage(room.Summaries(h.registry.Rooms())))
	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling roster", "error", err)
		return
	}
	for _, s := range h.sessions {
		h.deliver(ctx, s.peer, proto.EventRooms, data)
	}
}

// reject answers the requester with an error frame when rejection replies are on.
func (h *Hub) reject(ctx context.Context, s *session, reason string) {
	if !h.rejectionReplies {
		return
	}
	h.send(ctx, s.peer, proto.NewErrorMessage(reason))
}

func (h *Hub) roomCreated(ctx context.Context, roomID string) {
	h.metrics.rooms.Add(ctx, 1)
	slog.InfoContext(ctx, "Room created", "room.id", roomID)
	h.publish(ctx, events.RoomCreated, events.RoomPayload{RoomID: roomID})
}

func (h *Hub) publish(ctx context.Context, eventType string, payload events.RoomPayload) {
	event, err := events.New(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Could not build event", "event.type", eventType, "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "Could not publish event", "event.type", eventType, "room.id", payload.RoomID, "error", err)
	}
}
